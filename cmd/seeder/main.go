package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
	"github.com/mauv0809/courtside/internal/auth"
	"github.com/mauv0809/courtside/internal/cache"
	"github.com/mauv0809/courtside/internal/database"
	"github.com/mauv0809/courtside/internal/slot"
	"github.com/mauv0809/courtside/internal/user"
	"github.com/mauv0809/courtside/internal/venue"
	"gopkg.in/yaml.v3"
)

// seedFile is the YAML layout accepted by the seeder.
type seedFile struct {
	Users  []seedUser  `yaml:"users"`
	Venues []seedVenue `yaml:"venues"`
}

type seedUser struct {
	ID    string `yaml:"id"`
	Name  string `yaml:"name"`
	Email string `yaml:"email"`
	Phone string `yaml:"phone"`
	Role  string `yaml:"role"`
	// Banned suspends or reinstates the user when set. Omitted leaves an
	// existing user's status alone.
	Banned *bool `yaml:"banned"`
}

type seedVenue struct {
	Owner   string      `yaml:"owner"`
	Name    string      `yaml:"name"`
	City    string      `yaml:"city"`
	Address string      `yaml:"address"`
	Sports  []string    `yaml:"sports"`
	Courts  []seedCourt `yaml:"courts"`
}

type seedCourt struct {
	Name         string  `yaml:"name"`
	Sport        string  `yaml:"sport"`
	PricePerHour float64 `yaml:"price_per_hour"`
	SlotMinutes  int     `yaml:"slot_minutes"`
	// Windows maps a weekday name to its opening ranges.
	Windows map[string][]seedWindow `yaml:"windows"`
}

type seedWindow struct {
	Start string `yaml:"start"`
	End   string `yaml:"end"`
}

type summary struct {
	Users  int
	Venues int
	Courts int
}

// seeder acts as an admin so that venues can be created on behalf of their owners.
var seeder = auth.Actor{UserID: "seeder", Role: user.RoleAdmin}

func loadSeed(r io.Reader) (*seedFile, error) {
	var seed seedFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&seed); err != nil {
		return nil, fmt.Errorf("failed to parse seed file: %w", err)
	}
	return &seed, nil
}

func parseWeekday(name string) (time.Weekday, error) {
	for d := time.Sunday; d <= time.Saturday; d++ {
		if strings.EqualFold(name, d.String()) {
			return d, nil
		}
	}
	return 0, fmt.Errorf("unknown weekday %q", name)
}

func apply(ctx context.Context, users user.UserStore, venues venue.VenueStore, seed *seedFile) (summary, error) {
	var sum summary
	for _, u := range seed.Users {
		role := user.Role(strings.ToUpper(u.Role))
		if u.Role == "" {
			role = user.RoleUser
		}
		if !role.Valid() {
			return sum, fmt.Errorf("user %s: unknown role %q", u.ID, u.Role)
		}
		if _, err := users.UpsertUser(ctx, user.User{ID: u.ID, Name: u.Name, Email: u.Email, Phone: u.Phone, Role: role}); err != nil {
			return sum, fmt.Errorf("failed to seed user %s: %w", u.ID, err)
		}
		if u.Banned != nil {
			if err := users.SetBanned(ctx, u.ID, *u.Banned); err != nil {
				return sum, fmt.Errorf("failed to set ban status for %s: %w", u.ID, err)
			}
		}
		sum.Users++
	}

	for _, sv := range seed.Venues {
		v, err := venues.CreateVenue(ctx, seeder, venue.NewVenue{
			OwnerID: sv.Owner,
			Name:    sv.Name,
			City:    sv.City,
			Address: sv.Address,
			Sports:  sv.Sports,
		})
		if err != nil {
			return sum, fmt.Errorf("failed to seed venue %s: %w", sv.Name, err)
		}
		sum.Venues++

		for _, sc := range sv.Courts {
			c, err := venues.CreateCourt(ctx, seeder, v.ID, venue.NewCourt{
				Name:         sc.Name,
				Sport:        sc.Sport,
				PricePerHour: sc.PricePerHour,
				SlotMinutes:  sc.SlotMinutes,
			})
			if err != nil {
				return sum, fmt.Errorf("failed to seed court %s/%s: %w", sv.Name, sc.Name, err)
			}
			for dayName, windows := range sc.Windows {
				day, err := parseWeekday(dayName)
				if err != nil {
					return sum, fmt.Errorf("court %s: %w", sc.Name, err)
				}
				ranges := make([]slot.Range, 0, len(windows))
				for _, w := range windows {
					r, err := slot.NewRange(w.Start, w.End)
					if err != nil {
						return sum, fmt.Errorf("court %s on %s: %w", sc.Name, dayName, err)
					}
					ranges = append(ranges, r)
				}
				if _, err := venues.SetAvailabilityWindows(ctx, seeder, c.ID, day, ranges); err != nil {
					return sum, fmt.Errorf("failed to seed windows of court %s: %w", sc.Name, err)
				}
			}
			sum.Courts++
		}
	}
	return sum, nil
}

func getenv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func main() {
	file := flag.String("file", "seed.yaml", "YAML file describing users, venues and courts")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		log.Warn("No .env file found, reading from environment variables")
	}

	log.Info("Starting database seeder...", "file", *file)
	f, err := os.Open(*file)
	if err != nil {
		log.Fatalf("Failed to open seed file: %s", err)
	}
	defer f.Close()

	seed, err := loadSeed(f)
	if err != nil {
		log.Fatalf("%s", err)
	}

	db, teardown, err := database.InitDB(
		getenv("DB_NAME", "courtside.db"),
		os.Getenv("TURSO_PRIMARY_URL"),
		os.Getenv("TURSO_AUTH_TOKEN"),
		getenv("MIGRATIONS_DIR", "./migrations"),
	)
	if err != nil {
		log.Fatalf("Failed to initialize database: %s", err)
	}
	defer teardown()

	startTime := time.Now()
	sum, err := apply(context.Background(), user.New(db), venue.New(db, cache.NewNoop(), 0), seed)
	if err != nil {
		log.Fatalf("Seeding failed: %s", err)
	}
	log.Info("Seeding complete", "users", sum.Users, "venues", sum.Venues, "courts", sum.Courts, "duration", time.Since(startTime))
}
