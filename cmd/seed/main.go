package main

import (
	"log"
	"os"

	"shopora/database"
	"shopora/models"
	"shopora/seeds"

	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using env vars")
	}

	database.Connect()
	db := database.DB

	if err := models.MigrateAll(db); err != nil {
		log.Fatal("Migration failed: ", err)
	}

	log.Println("Seeding settings...")
	for _, setting := range seeds.DefaultSettings {
		var existing models.Setting
		if err := db.Where("key = ?", setting.Key).First(&existing).Error; err != nil {
			db.Create(&setting)
		}
	}

	log.Println("Seeding products...")
	created := 0
	for _, product := range seeds.AllProducts {
		var existing models.Product
		if err := db.Where("name = ?", product.Name).First(&existing).Error; err != nil {
			if err := db.Create(&product).Error; err != nil {
				log.Printf("Failed to seed %q: %v\n", product.Name, err)
				continue
			}
			created++
		}
	}
	log.Printf("Seeded %d new products\n", created)

	// Optional bootstrap admin
	adminEmail := os.Getenv("ADMIN_EMAIL")
	adminPassword := os.Getenv("ADMIN_PASSWORD")
	if adminEmail != "" && adminPassword != "" {
		var existing models.User
		if err := db.Where("email = ?", adminEmail).First(&existing).Error; err != nil {
			hashed, err := bcrypt.GenerateFromPassword([]byte(adminPassword), bcrypt.DefaultCost)
			if err != nil {
				log.Fatal("Failed to hash admin password: ", err)
			}
			admin := models.User{
				Name:     "Store Admin",
				Email:    adminEmail,
				Password: string(hashed),
				Role:     models.RoleAdmin,
			}
			if err := db.Create(&admin).Error; err != nil {
				log.Fatal("Failed to create admin: ", err)
			}
			log.Println("Created admin user", adminEmail)
		}
	}

	log.Println("Seeding complete")
}
