package utils

import (
	"fmt"
	"strings"

	"github.com/badoux/checkmail"
	"github.com/likexian/whois"
)

// VerificationResult describes how deliverable an invitee address
// looks before we store an invite and attempt to email it.
type VerificationResult struct {
	Email   string `json:"email"`
	Status  string `json:"status"` // valid, invalid, disposable, unknown
	Details string `json:"details"`
	WHOIS   string `json:"whois,omitempty"`
}

var (
	disposableDomains = map[string]struct{}{
		"mailinator.com":    {},
		"guerrillamail.com": {},
		"10minutemail.com":  {},
		"tempmail.com":      {},
		"temp-mail.org":     {},
		"throwawaymail.com": {},
		"yopmail.com":       {},
		"trashmail.com":     {},
		"getnada.com":       {},
		"sharklasers.com":   {},
	}

	// Common email typos
	commonTypos = map[string]string{
		"gmai.com":   "gmail.com",
		"gmal.com":   "gmail.com",
		"gmail.co":   "gmail.com",
		"yaho.com":   "yahoo.com",
		"hotmai.com": "hotmail.com",
		"outlok.com": "outlook.com",
	}
)

// VerifyInviteeAddress checks an invitee email before an invite is
// created. Syntax, typo and disposable-domain problems are definitive
// failures; a missing MX record marks the address invalid too. WHOIS
// data is attached when available but never fails the check.
func VerifyInviteeAddress(email string) *VerificationResult {
	email = strings.ToLower(strings.TrimSpace(email))
	result := &VerificationResult{
		Email:  email,
		Status: "unknown",
	}

	// 1. Basic syntax validation using checkmail
	if err := checkmail.ValidateFormat(email); err != nil {
		result.Status = "invalid"
		result.Details = "Invalid email format: " + err.Error()
		return result
	}

	parts := strings.Split(email, "@")
	if len(parts) != 2 {
		result.Status = "invalid"
		result.Details = "Invalid email format"
		return result
	}

	localPart, domain := parts[0], parts[1]

	// 2. Check for common typos
	if suggestedDomain, ok := commonTypos[domain]; ok {
		result.Status = "invalid"
		result.Details = fmt.Sprintf("Possible typo, did you mean %s@%s?", localPart, suggestedDomain)
		return result
	}

	// 3. Disposable email check
	if _, ok := disposableDomains[domain]; ok {
		result.Status = "disposable"
		result.Details = "Disposable email domain"
		return result
	}

	// 4. DNS/MX record check with checkmail
	if err := checkmail.ValidateHost(domain); err != nil {
		result.Status = "invalid"
		result.Details = "Domain validation failed: " + err.Error()
		return result
	}

	result.Status = "valid"
	result.Details = "Address looks deliverable"

	// 5. Attach WHOIS data if available
	if whoisInfo, err := whois.Whois(domain); err == nil {
		result.WHOIS = whoisInfo
	}

	return result
}

// Deliverable reports whether the result is good enough to invite.
func (r *VerificationResult) Deliverable() bool {
	return r.Status == "valid" || r.Status == "unknown"
}
