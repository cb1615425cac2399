// Package rib validates and completes the fields extracted from a French RIB
// (Relevé d'Identité Bancaire).
package rib

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// Field names returned for a RIB document.
const (
	FieldRibResult     = "Rib result"
	FieldBankCode      = "Code Banque"
	FieldBranchCode    = "Code Guichet"
	FieldAccountNumber = "Account number"
	FieldRibKey        = "Clé RIB"
	FieldIBAN          = "IBAN"
	FieldBIC           = "BIC"
	FieldAddress       = "RIB Address"
)

// Keys lists every field a RIB result carries.
var Keys = []string{
	FieldRibResult,
	FieldBankCode,
	FieldBranchCode,
	FieldAccountNumber,
	FieldRibKey,
	FieldIBAN,
	FieldBIC,
	FieldAddress,
}

var (
	ErrInvalidIBAN   = errors.New("invalid IBAN")
	ErrNotFrenchIBAN = errors.New("not a French IBAN")
	ErrInvalidRIB    = errors.New("invalid RIB")
)

var (
	bicPattern     = regexp.MustCompile(`^[A-Z]{6}[A-Z0-9]{2}([A-Z0-9]{3})?$`)
	ibanPattern    = regexp.MustCompile(`^[A-Z]{2}[0-9]{2}[A-Z0-9]{11,30}$`)
	bankPattern    = regexp.MustCompile(`^[0-9]{5}$`)
	accountPattern = regexp.MustCompile(`^[0-9A-Z]{11}$`)
	keyPattern     = regexp.MustCompile(`^[0-9]{2}$`)
)

// Parts is the French domestic account identifier.
type Parts struct {
	BankCode      string
	BranchCode    string
	AccountNumber string
	Key           string
}

// String renders the parts the way the "Rib result" field does: bank_branch_account_key.
func (p Parts) String() string {
	return strings.Join([]string{p.BankCode, p.BranchCode, p.AccountNumber, p.Key}, "_")
}

// Validate checks the formats and the RIB key.
func (p Parts) Validate() error {
	if !bankPattern.MatchString(p.BankCode) || !bankPattern.MatchString(p.BranchCode) ||
		!accountPattern.MatchString(p.AccountNumber) || !keyPattern.MatchString(p.Key) {
		return fmt.Errorf("%w: malformed %s", ErrInvalidRIB, p)
	}
	want, err := Key(p.BankCode, p.BranchCode, p.AccountNumber)
	if err != nil {
		return err
	}
	if want != p.Key {
		return fmt.Errorf("%w: key %s, expected %s", ErrInvalidRIB, p.Key, want)
	}
	return nil
}

// NormalizeIBAN upper-cases s and drops spaces and dashes.
func NormalizeIBAN(s string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case ' ', '-', '\t', '\u00a0':
			return -1
		}
		return r
	}, strings.ToUpper(strings.TrimSpace(s)))
}

// NormalizeBIC upper-cases s and drops spaces.
func NormalizeBIC(s string) string {
	return strings.ReplaceAll(strings.ToUpper(strings.TrimSpace(s)), " ", "")
}

// ValidBIC reports whether s is an 8 or 11 character BIC.
func ValidBIC(s string) bool {
	return bicPattern.MatchString(NormalizeBIC(s))
}

// ValidIBAN reports whether s passes the ISO 13616 mod-97 check.
func ValidIBAN(s string) bool {
	iban := NormalizeIBAN(s)
	if !ibanPattern.MatchString(iban) {
		return false
	}
	rearranged := iban[4:] + iban[:4]
	rem := 0
	for _, r := range rearranged {
		switch {
		case r >= '0' && r <= '9':
			rem = (rem*10 + int(r-'0')) % 97
		case r >= 'A' && r <= 'Z':
			rem = (rem*100 + int(r-'A') + 10) % 97
		default:
			return false
		}
	}
	return rem == 1
}

// FromIBAN splits a French IBAN into its domestic parts.
func FromIBAN(s string) (Parts, error) {
	iban := NormalizeIBAN(s)
	if !ValidIBAN(iban) {
		return Parts{}, ErrInvalidIBAN
	}
	if (!strings.HasPrefix(iban, "FR") && !strings.HasPrefix(iban, "MC")) || len(iban) != 27 {
		return Parts{}, ErrNotFrenchIBAN
	}
	return Parts{
		BankCode:      iban[4:9],
		BranchCode:    iban[9:14],
		AccountNumber: iban[14:25],
		Key:           iban[25:27],
	}, nil
}

// Key computes the two-digit RIB key. Letters in the account number are
// substituted with their conventional digit values.
func Key(bank, branch, account string) (string, error) {
	b, err := digits(bank)
	if err != nil {
		return "", err
	}
	g, err := digits(branch)
	if err != nil {
		return "", err
	}
	a, err := digits(account)
	if err != nil {
		return "", err
	}
	sum := (89*mod97(b) + 15*mod97(g) + 3*mod97(a)) % 97
	return fmt.Sprintf("%02d", 97-sum), nil
}

// Complete returns a copy of fields that carries every RIB key. Missing domestic
// parts are derived from a valid French IBAN, and "Rib result" is rebuilt when all
// four parts are known. Unresolved fields are empty strings.
func Complete(fields map[string]string) map[string]string {
	out := make(map[string]string, len(Keys)+len(fields))
	for k, v := range fields {
		out[k] = strings.TrimSpace(v)
	}
	for _, k := range Keys {
		if _, ok := out[k]; !ok {
			out[k] = ""
		}
	}

	if out[FieldIBAN] != "" {
		out[FieldIBAN] = NormalizeIBAN(out[FieldIBAN])
	}
	if out[FieldBIC] != "" {
		out[FieldBIC] = NormalizeBIC(out[FieldBIC])
	}

	if p, err := FromIBAN(out[FieldIBAN]); err == nil {
		fill(out, FieldBankCode, p.BankCode)
		fill(out, FieldBranchCode, p.BranchCode)
		fill(out, FieldAccountNumber, p.AccountNumber)
		fill(out, FieldRibKey, p.Key)
	}

	p := Parts{
		BankCode:      out[FieldBankCode],
		BranchCode:    out[FieldBranchCode],
		AccountNumber: out[FieldAccountNumber],
		Key:           out[FieldRibKey],
	}
	if p.BankCode != "" && p.BranchCode != "" && p.AccountNumber != "" && p.Key != "" {
		out[FieldRibResult] = p.String()
	}
	return out
}

func fill(m map[string]string, key, value string) {
	if m[key] == "" {
		m[key] = value
	}
}

func digits(s string) (string, error) {
	var b strings.Builder
	for _, r := range strings.ToUpper(s) {
		switch {
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		case r >= 'A' && r <= 'I':
			b.WriteRune('1' + (r - 'A'))
		case r >= 'J' && r <= 'R':
			b.WriteRune('1' + (r - 'J'))
		case r >= 'S' && r <= 'Z':
			b.WriteRune('2' + (r - 'S'))
		default:
			return "", fmt.Errorf("%w: unexpected character %q", ErrInvalidRIB, r)
		}
	}
	return b.String(), nil
}

func mod97(s string) int {
	rem := 0
	for _, r := range s {
		rem = (rem*10 + int(r-'0')) % 97
	}
	return rem
}
