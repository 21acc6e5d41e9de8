package db

import (
	"log"

	"github.com/avishkarm/clinic-scheduler/models"
)

// Migrate applies the schema and seeds the fixed role set. Expects Init to
// have run.
func Migrate() {
	err := DB.AutoMigrate(
		&models.User{},
		&models.Role{},
		&models.Permission{},
		&models.AvailabilityWindow{},
		&models.Booking{},
	)
	if err != nil {
		log.Fatal("Failed to run migrations: ", err)
	}

	seedRolesAndPermissions()
	log.Println("Migrations applied")
}

// seedRolesAndPermissions creates the fixed clinic role set and their
// permissions when missing. Idempotent.
func seedRolesAndPermissions() {
	roles := []models.Role{
		{Name: "admin", Description: "Administrator with full access"},
		{Name: "clinician", Description: "Provider whose calendar is scheduled"},
		{Name: "staff", Description: "Front desk staff managing the schedule"},
		{Name: "patient", Description: "Patient booking via the self-service flow"},
	}
	for _, role := range roles {
		var existing models.Role
		if DB.Where("name = ?", role.Name).First(&existing).RowsAffected == 0 {
			DB.Create(&role)
		}
	}

	permissions := []models.Permission{
		{Name: "create_booking", Description: "Create bookings", Resource: "bookings", Action: "create"},
		{Name: "read_bookings", Description: "View bookings", Resource: "bookings", Action: "read"},
		{Name: "update_booking", Description: "Reschedule or change booking status", Resource: "bookings", Action: "update"},
		{Name: "create_availability", Description: "Create availability windows", Resource: "availability", Action: "create"},
		{Name: "read_availability", Description: "View availability windows", Resource: "availability", Action: "read"},
		{Name: "update_availability", Description: "Edit availability windows", Resource: "availability", Action: "update"},
		{Name: "delete_availability", Description: "Disable availability windows", Resource: "availability", Action: "delete"},
	}
	for _, permission := range permissions {
		var existing models.Permission
		if DB.Where("name = ?", permission.Name).First(&existing).RowsAffected == 0 {
			DB.Create(&permission)
		}
	}

	var all []models.Permission
	DB.Find(&all)

	var adminRole models.Role
	if DB.Where("name = ?", "admin").First(&adminRole).RowsAffected > 0 {
		DB.Model(&adminRole).Association("Permissions").Replace(all)
	}

	var staffPerms []models.Permission
	DB.Where("resource IN ?", []string{"bookings", "availability"}).Find(&staffPerms)
	for _, name := range []string{"clinician", "staff"} {
		var role models.Role
		if DB.Where("name = ?", name).First(&role).RowsAffected > 0 {
			DB.Model(&role).Association("Permissions").Replace(staffPerms)
		}
	}

	var patientPerms []models.Permission
	DB.Where("name IN ?", []string{"read_bookings", "read_availability"}).Find(&patientPerms)
	var patientRole models.Role
	if DB.Where("name = ?", "patient").First(&patientRole).RowsAffected > 0 {
		DB.Model(&patientRole).Association("Permissions").Replace(patientPerms)
	}
}
