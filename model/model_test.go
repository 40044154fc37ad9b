package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupModelTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&Patient{}, &Doctor{}, &SecurityLog{}); err != nil {
		t.Fatalf("auto migrate: %v", err)
	}
	return db
}

func TestPatientNationalIDUnique(t *testing.T) {
	db := setupModelTestDB(t)

	first := Patient{PatientID: "P1", Name: "A", DateOfBirth: "2000-01-01", Phone: "555", NationalID: "123456789012", PasswordHash: "x", IsActive: true}
	assert.NoError(t, db.Create(&first).Error)

	dup := Patient{PatientID: "P2", Name: "B", DateOfBirth: "2001-02-02", Phone: "556", NationalID: "123456789012", PasswordHash: "y", IsActive: true}
	assert.Error(t, db.Create(&dup).Error, "duplicate national id must violate the unique index")
}

func TestPatientIdentifierPrimary(t *testing.T) {
	db := setupModelTestDB(t)

	first := Patient{PatientID: "P1", Name: "A", DateOfBirth: "2000-01-01", Phone: "555", NationalID: "123456789012", PasswordHash: "x", IsActive: true}
	assert.NoError(t, db.Create(&first).Error)

	samePK := Patient{PatientID: "P1", Name: "C", DateOfBirth: "2002-03-03", Phone: "557", NationalID: "000011112222", PasswordHash: "z", IsActive: true}
	assert.Error(t, db.Create(&samePK).Error)
}

func TestDoctorLicenseNumberUnique(t *testing.T) {
	db := setupModelTestDB(t)

	first := Doctor{DoctorID: "D1", Name: "Dr. A", LicenseNumber: "LIC-001", Specialization: "Cardiology", HospitalName: "Apollo", PasswordHash: "x", IsActive: true}
	assert.NoError(t, db.Create(&first).Error)

	dup := Doctor{DoctorID: "D2", Name: "Dr. B", LicenseNumber: "LIC-001", Specialization: "Neurology", HospitalName: "Fortis", PasswordHash: "y", IsActive: true}
	assert.Error(t, db.Create(&dup).Error)
}

func TestDoctorStartsUnverified(t *testing.T) {
	db := setupModelTestDB(t)

	doc := Doctor{DoctorID: "D1", Name: "Dr. A", LicenseNumber: "LIC-001", Specialization: "Cardiology", HospitalName: "Apollo", PasswordHash: "x", IsActive: true}
	assert.NoError(t, db.Create(&doc).Error)

	var loaded Doctor
	assert.NoError(t, db.First(&loaded, "doctor_id = ?", "D1").Error)
	assert.False(t, loaded.IsVerified)
	assert.Nil(t, loaded.VerifiedAt)
}

func TestTableNames(t *testing.T) {
	assert.Equal(t, "patients", Patient{}.TableName())
	assert.Equal(t, "doctors", Doctor{}.TableName())
}
