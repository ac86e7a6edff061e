// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import "time"

// RoleAdmin and RoleNormal are the two user roles. The role is persisted as
// the users.is_admin flag and surfaced as a string in the API.
const (
	RoleAdmin  = "admin"
	RoleNormal = "normal"
)

// Contact is a single phonebook entry. Optional fields are stored as empty
// strings, never NULL.
type Contact struct {
	ID                   int64  `json:"id"`
	FullName             string `json:"full_name"`
	MainCompany          string `json:"main_company"`
	JobTitle             string `json:"job_title"`
	MobilePhone          string `json:"mobile_phone"`
	OfficePhone1         string `json:"office_phone1"`
	Extension1           string `json:"extension1"`
	OfficePhone2         string `json:"office_phone2"`
	Extension2           string `json:"extension2"`
	OfficePhone3         string `json:"office_phone3"`
	Extension3           string `json:"extension3"`
	Email                string `json:"email"`
	OfficeManagerName1   string `json:"office_manager_name1"`
	OfficeManagerMobile1 string `json:"office_manager_mobile1"`
	OfficeManagerName2   string `json:"office_manager_name2"`
	OfficeManagerMobile2 string `json:"office_manager_mobile2"`
	OfficeManagerName3   string `json:"office_manager_name3"`
	OfficeManagerMobile3 string `json:"office_manager_mobile3"`
	OfficeEmail          string `json:"office_email"`
	SubjectCategory      string `json:"subject_category"`
	Country              string `json:"country"`
	Address              string `json:"address"`
	PostalCode           string `json:"postal_code"`
	Description          string `json:"description"`
}

// Company groups contacts under a unique company name.
type Company struct {
	ID          int64  `json:"id"`
	CompanyName string `json:"company_name"`
	SubCompany1 string `json:"sub_company1"`
	SubCompany2 string `json:"sub_company2"`
}

// User is an application account.
type User struct {
	ID           int64  `json:"id"`
	Username     string `json:"username"`
	PasswordHash string `json:"-"` // Never expose in JSON
	IsAdmin      int64  `json:"is_admin"`
}

// Role returns the user's role string derived from the is_admin flag.
func (u *User) Role() string {
	if u.IsAdmin == 1 {
		return RoleAdmin
	}
	return RoleNormal
}

// Event is a persisted log record mirrored from WARN/ERROR slog output.
type Event struct {
	ID        int64     `json:"id"`
	Level     string    `json:"level"`
	Category  string    `json:"category"`
	Message   string    `json:"message"`
	Metadata  string    `json:"metadata"`
	CreatedAt time.Time `json:"created_at"`
}
