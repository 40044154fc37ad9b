package model

import "time"

// Patient is the credential-store row for a registered patient. The ledger
// holds its own copy of the demographic fields keyed by the same PatientID;
// this table only exists so the patient can log in.
type Patient struct {
	PatientID             string     `json:"patient_id" gorm:"column:patient_id;type:varchar(20);primaryKey"`
	Name                  string     `json:"name" gorm:"type:varchar(255);not null"`
	DateOfBirth           string     `json:"date_of_birth" gorm:"column:date_of_birth;type:varchar(10);not null"`
	Phone                 string     `json:"phone" gorm:"type:varchar(20);not null"`
	NationalID            string     `json:"national_id" gorm:"column:national_id;type:varchar(12);not null;uniqueIndex"`
	PasswordHash          string     `json:"-" gorm:"column:password_hash;type:varchar(255);not null"`
	FingerprintTemplateID *int       `json:"fingerprint_template_id,omitempty" gorm:"column:fingerprint_template_id"`
	IsActive              bool       `json:"is_active" gorm:"column:is_active;default:true"`
	LastLogin             *time.Time `json:"last_login,omitempty" gorm:"column:last_login"`
	CreatedAt             time.Time  `json:"created_at"`
	UpdatedAt             time.Time  `json:"updated_at"`
}

func (Patient) TableName() string {
	return "patients"
}
