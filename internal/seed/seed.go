package seed

import (
  "context"
  "encoding/json"
  "fmt"
  "os"

  "golang.org/x/crypto/bcrypt"
  "gorm.io/datatypes"
  "gorm.io/gorm"

  "github.com/r7ala/r7ala-backend/internal/repos"
  "github.com/r7ala/r7ala-backend/internal/types"
)

type demoAccount struct {
  firstName string
  lastName  string
  email     string
  password  string
  roles     []string
  guide     *types.TourGuide
}

// SeedAll provisions a demo traveler and two tour guides so the chat flows
// can be exercised on a fresh database. Gated by SEED_DEMO_DATA.
func SeedAll(
  db              *gorm.DB,
  userRepo        repos.UserRepo,
  tourGuideRepo   repos.TourGuideRepo,
) error {
  if os.Getenv("SEED_DEMO_DATA") != "true" {
    return nil
  }
  fmt.Println("Running SeedAll... seeding demo users and tour guides")

  accounts := []demoAccount{
    {
      firstName: "Laila",
      lastName:  "Hassan",
      email:     "laila@r7ala.app",
      password:  "TravelOn2025",
      roles:     []string{"User"},
    },
    {
      firstName: "Omar",
      lastName:  "Farouk",
      email:     "omar@r7ala.app",
      password:  "GuideLife2025",
      roles:     []string{"User", "TourGuide"},
      guide: &types.TourGuide{
        Bio:               "Cairo and Giza day tours, ten seasons running.",
        YearsOfExperience: 10,
        HourlyRate:        35,
        IsAvailable:       true,
      },
    },
    {
      firstName: "Nadia",
      lastName:  "Mansour",
      email:     "nadia@r7ala.app",
      password:  "RedSea2025",
      roles:     []string{"User", "TourGuide"},
      guide: &types.TourGuide{
        Bio:               "Diving and coastal trips around Hurghada.",
        YearsOfExperience: 6,
        HourlyRate:        28,
        IsAvailable:       true,
      },
    },
  }
  guideLanguages := map[string][]string{
    "omar@r7ala.app":  {"Arabic", "English"},
    "nadia@r7ala.app": {"Arabic", "English", "German"},
  }

  ctx := context.Background()
  return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
    for _, acct := range accounts {
      exists, err := userRepo.EmailExists(ctx, tx, acct.email)
      if err != nil {
        return fmt.Errorf("failed to check seed account %s: %w", acct.email, err)
      }
      if exists {
        continue
      }
      hashed, err := bcrypt.GenerateFromPassword([]byte(acct.password), bcrypt.DefaultCost)
      if err != nil {
        return fmt.Errorf("failed to hash seed password: %w", err)
      }
      roles, err := json.Marshal(acct.roles)
      if err != nil {
        return fmt.Errorf("failed to marshal seed roles: %w", err)
      }
      user := &types.User{
        FirstName: acct.firstName,
        LastName:  acct.lastName,
        Email:     acct.email,
        Password:  string(hashed),
        Roles:     datatypes.JSON(roles),
      }
      if _, err := userRepo.Create(ctx, tx, []*types.User{user}); err != nil {
        return fmt.Errorf("failed to create seed user %s: %w", acct.email, err)
      }
      if acct.guide != nil {
        langs, err := json.Marshal(guideLanguages[acct.email])
        if err != nil {
          return fmt.Errorf("failed to marshal seed languages: %w", err)
        }
        acct.guide.UserID = user.ID
        acct.guide.Languages = datatypes.JSON(langs)
        if _, err := tourGuideRepo.Create(ctx, tx, []*types.TourGuide{acct.guide}); err != nil {
          return fmt.Errorf("failed to create seed tour guide for %s: %w", acct.email, err)
        }
      }
    }
    fmt.Println("SeedAll Complete!")
    return nil
  })
}
