package model

import "time"

// Doctor is the credential-store row for a registered doctor. IsVerified
// only ever transitions false -> true, via the audit organization's ledger
// transaction; it is never reset.
type Doctor struct {
	DoctorID       string     `json:"doctor_id" gorm:"column:doctor_id;type:varchar(20);primaryKey"`
	Name           string     `json:"name" gorm:"type:varchar(255);not null"`
	LicenseNumber  string     `json:"license_number" gorm:"column:license_number;type:varchar(50);not null;uniqueIndex"`
	Specialization string     `json:"specialization" gorm:"type:varchar(100);not null"`
	HospitalName   string     `json:"hospital_name" gorm:"column:hospital_name;type:varchar(255);not null"`
	PasswordHash   string     `json:"-" gorm:"column:password_hash;type:varchar(255);not null"`
	IsVerified     bool       `json:"is_verified" gorm:"column:is_verified;default:false"`
	VerifiedAt     *time.Time `json:"verified_at,omitempty" gorm:"column:verified_at"`
	IsActive       bool       `json:"is_active" gorm:"column:is_active;default:true"`
	LastLogin      *time.Time `json:"last_login,omitempty" gorm:"column:last_login"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

func (Doctor) TableName() string {
	return "doctors"
}
