package db

import (
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/diewo77/go-quotes/internal/config"
	"github.com/diewo77/go-quotes/internal/models"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var documentActions = []struct {
	action, verb string
}{
	{"*", "All %s actions"},
	{"list", "List %ss"},
	{"view", "View and download %ss"},
	{"create", "Create %ss"},
	{"edit", "Change, convert and email %ss"},
	{"delete", "Delete %ss"},
}

// SeedPermissions creates the core permissions for the application.
func SeedPermissions(db *gorm.DB) error {
	type perm struct {
		ResourceType, Action, Description string
	}
	permissions := []perm{{"*", "*", "Full system access"}}
	for _, resource := range []string{string(models.TypeQuote), string(models.TypeInvoice)} {
		for _, a := range documentActions {
			permissions = append(permissions, perm{resource, a.action, fmt.Sprintf(a.verb, resource)})
		}
	}
	permissions = append(permissions,
		perm{"client", "*", "All client actions"},
		perm{"client", "list", "List clients"},
		perm{"client", "view", "View client details"},
		perm{"client", "create", "Create clients"},
		perm{"client", "edit", "Change clients and their contacts"},
	)

	for _, p := range permissions {
		record := models.Permission{
			ResourceType: p.ResourceType,
			Action:       p.Action,
			Description:  p.Description,
		}
		err := db.Where("resource_type = ? AND action = ?", p.ResourceType, p.Action).
			FirstOrCreate(&record).Error
		if err != nil {
			return fmt.Errorf("seed permission %s:%s: %w", p.ResourceType, p.Action, err)
		}
	}
	return nil
}

// SeedProfiles creates the default system profiles with their permissions.
func SeedProfiles(db *gorm.DB) error {
	if err := SeedPermissions(db); err != nil {
		return err
	}

	profiles := []struct {
		Name        string
		Description string
		Permissions []string
	}{
		{
			Name:        "admin",
			Description: "Full system administrator with all permissions",
			Permissions: []string{"*:*"},
		},
		{
			Name:        "viewer",
			Description: "Read-only access to quotes and invoices",
			Permissions: []string{
				"quote:list", "quote:view",
				"invoice:list", "invoice:view",
				"client:list", "client:view",
			},
		},
		{
			Name:        "accountant",
			Description: "Manage quotes and invoices",
			Permissions: []string{
				"quote:*", "invoice:*", "client:*",
			},
		},
	}

	for _, p := range profiles {
		var profile models.Profile
		err := db.Where("name = ?", p.Name).First(&profile).Error
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		if errors.Is(err, gorm.ErrRecordNotFound) {
			profile = models.Profile{Name: p.Name, Description: p.Description, IsSystem: true}
			if err := db.Create(&profile).Error; err != nil {
				return fmt.Errorf("create profile %s: %w", p.Name, err)
			}
		}

		var perms []models.Permission
		for _, code := range p.Permissions {
			resource, action, _ := strings.Cut(code, ":")
			var perm models.Permission
			if err := db.Where("resource_type = ? AND action = ?", resource, action).First(&perm).Error; err == nil {
				perms = append(perms, perm)
			}
		}
		if err := db.Model(&profile).Association("Permissions").Replace(perms); err != nil {
			return fmt.Errorf("assign permissions to %s: %w", p.Name, err)
		}
	}
	return nil
}

// SeedAdmin creates the bootstrap company and admin user when an admin
// email is configured. Existing users are left untouched.
func SeedAdmin(db *gorm.DB, cfg config.SeedConfig) error {
	if cfg.AdminEmail == "" {
		return nil
	}
	var count int64
	if err := db.Model(&models.User{}).Where("email = ?", cfg.AdminEmail).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	if cfg.AdminPassword == "" {
		return errors.New("SEED_ADMIN_PASSWORD is required with SEED_ADMIN_EMAIL")
	}

	var admin models.Profile
	if err := db.Where("name = ?", "admin").First(&admin).Error; err != nil {
		return fmt.Errorf("load admin profile: %w", err)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(cfg.AdminPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	return db.Transaction(func(tx *gorm.DB) error {
		company := models.Company{Name: cfg.CompanyName, Email: cfg.AdminEmail}
		if err := tx.Create(&company).Error; err != nil {
			return fmt.Errorf("create company: %w", err)
		}
		user := models.User{
			Email:     cfg.AdminEmail,
			Name:      "Administrator",
			Password:  string(hash),
			CompanyID: company.ID,
			ProfileID: &admin.ID,
		}
		if err := tx.Create(&user).Error; err != nil {
			return fmt.Errorf("create admin user: %w", err)
		}
		log.Printf("Seeded admin user %s for company %q", user.Email, company.Name)
		return nil
	})
}

// Seed runs every seeder. It is safe to call on each start.
func Seed(db *gorm.DB, cfg config.SeedConfig) error {
	if err := SeedProfiles(db); err != nil {
		return err
	}
	return SeedAdmin(db, cfg)
}
