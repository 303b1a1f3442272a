// Package models defines the client session, the screen identifiers and
// the typed payloads exchanged with the Krishi-Chetan backend.
package models

import (
	"strings"
	"time"
)

// Role identifies which dashboard a user gets.
type Role string

const (
	// RoleFarmer is the default role.
	RoleFarmer Role = "farmer"
	// RoleOfficer is an agricultural extension officer.
	RoleOfficer Role = "officer"
)

// ParseRole maps a stored role string to a Role. Anything that is not
// "officer" is treated as a farmer.
func ParseRole(s string) Role {
	if strings.EqualFold(strings.TrimSpace(s), string(RoleOfficer)) {
		return RoleOfficer
	}
	return RoleFarmer
}

// Session is the authenticated user state persisted on the client.
type Session struct {
	// Token is the bearer token issued by the backend.
	Token string `json:"token"`
	// Role selects the initial module and the visible navigation.
	Role Role `json:"role"`
	// Name is the display name.
	Name string `json:"name"`
	// Phone identifies the farmer in profile and advisory endpoints.
	Phone string `json:"phone"`
	// CreatedAt is when the session was stored.
	CreatedAt time.Time `json:"created_at"`
}

// DefaultName is shown when the backend did not return a user name.
const DefaultName = "User"

// Normalize fills defaults for fields an older or partial record may lack.
func (s *Session) Normalize() {
	s.Role = ParseRole(string(s.Role))
	if strings.TrimSpace(s.Name) == "" {
		s.Name = DefaultName
	}
}

// Module identifies one top-level screen.
type Module string

const (
	ModuleDashboard Module = "dashboard"
	ModuleDiagnose  Module = "diagnose"
	ModuleMarket    Module = "market"
	ModuleOfficer   Module = "officer"
	ModuleSettings  Module = "settings"
)

// Modules lists every screen in navigation order.
var Modules = []Module{ModuleDashboard, ModuleDiagnose, ModuleMarket, ModuleOfficer, ModuleSettings}

// ParseModule reports whether id names a known module.
func ParseModule(id string) (Module, bool) {
	for _, m := range Modules {
		if string(m) == id {
			return m, true
		}
	}
	return "", false
}

// Language is one of the supported UI languages.
type Language string

const (
	English Language = "en"
	Hindi   Language = "hi"
	Marathi Language = "mr"
)

// DefaultLanguage is used when no language was chosen.
const DefaultLanguage = English

// Languages lists the supported languages in switcher order.
var Languages = []Language{English, Hindi, Marathi}

// ParseLanguage reports whether code is a supported language.
func ParseLanguage(code string) (Language, bool) {
	code = strings.ToLower(strings.TrimSpace(code))
	for _, l := range Languages {
		if string(l) == code {
			return l, true
		}
	}
	return "", false
}

// LanguageOrDefault returns the parsed language or DefaultLanguage.
func LanguageOrDefault(code string) Language {
	if l, ok := ParseLanguage(code); ok {
		return l
	}
	return DefaultLanguage
}
