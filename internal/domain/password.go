package domain

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/crypto/bcrypt"

	"github.com/phrazzld/signup/internal/result"
)

// Password length limits, counted in characters.
const (
	MinPasswordLength = 8
	MaxPasswordLength = 100
)

// PasswordSymbols is the set a password must draw at least one symbol from.
const PasswordSymbols = `!@#$%^&*()_+-=[]{};':"\|,.<>/?`

// PasswordStrength classifies a valid password.
type PasswordStrength string

// Strength levels returned by Password.Strength.
const (
	StrengthWeak   PasswordStrength = "weak"
	StrengthMedium PasswordStrength = "medium"
	StrengthStrong PasswordStrength = "strong"
)

// ParsePasswordStrength maps a stored label back to a PasswordStrength.
// Unknown labels read as weak.
func ParsePasswordStrength(s string) PasswordStrength {
	switch PasswordStrength(s) {
	case StrengthMedium, StrengthStrong:
		return PasswordStrength(s)
	default:
		return StrengthWeak
	}
}

// Password is a secret that passed NewPassword's rules.
//
// A Password built by NewPassword holds the plaintext in memory only; one
// rehydrated with PasswordFromHash holds just the stored bcrypt digest.
// Neither form can be changed after construction.
type Password struct {
	plain    string
	hash     []byte
	strength PasswordStrength
}

// NewPassword validates raw and returns a Password, or the first violated
// rule as a ValidationError.
func NewPassword(raw string) result.Result[Password, ValidationError] {
	if raw == "" {
		return fail[Password](FieldPassword, "password cannot be empty")
	}

	length := utf8.RuneCountInString(raw)
	if length < MinPasswordLength {
		return fail[Password](FieldPassword, "password must be at least 8 characters long")
	}
	if length > MaxPasswordLength {
		return fail[Password](FieldPassword, "password must be at most 100 characters long")
	}

	classes := classify(raw)
	switch {
	case !classes.upper:
		return fail[Password](FieldPassword, "password must contain at least one uppercase letter")
	case !classes.lower:
		return fail[Password](FieldPassword, "password must contain at least one lowercase letter")
	case !classes.digit:
		return fail[Password](FieldPassword, "password must contain at least one digit")
	case !classes.symbol:
		return fail[Password](FieldPassword, "password must contain at least one special character")
	}

	return result.Ok[Password, ValidationError](Password{
		plain:    raw,
		strength: strengthOf(length, classes),
	})
}

// PasswordFromHash rehydrates a Password from a digest produced by Hash.
// The digest comes from trusted storage and is not re-validated.
func PasswordFromHash(hash []byte, strength PasswordStrength) Password {
	return Password{hash: append([]byte(nil), hash...), strength: strength}
}

// Strength classifies the password from its length and character variety.
func (p Password) Strength() PasswordStrength {
	return p.strength
}

// Matches reports whether plaintext is this password.
func (p Password) Matches(plaintext string) bool {
	if p.hash != nil {
		return bcrypt.CompareHashAndPassword(p.hash, prehash(plaintext)) == nil
	}
	return subtle.ConstantTimeCompare([]byte(p.plain), []byte(plaintext)) == 1
}

// Hash returns a bcrypt digest suitable for storage. A rehydrated password
// returns its stored digest unchanged.
func (p Password) Hash(cost int) ([]byte, error) {
	if p.hash != nil {
		return append([]byte(nil), p.hash...), nil
	}
	return bcrypt.GenerateFromPassword(prehash(p.plain), cost)
}

// IsZero reports whether p was never produced by NewPassword or PasswordFromHash.
func (p Password) IsZero() bool {
	return p.plain == "" && p.hash == nil
}

// String never reveals the secret.
func (p Password) String() string {
	return "********"
}

// bcrypt reads at most 72 bytes; a 100 character password is first reduced
// to a fixed 44 byte digest.
func prehash(plaintext string) []byte {
	sum := sha256.Sum256([]byte(plaintext))
	out := make([]byte, base64.StdEncoding.EncodedLen(len(sum)))
	base64.StdEncoding.Encode(out, sum[:])
	return out
}

type charClasses struct {
	upper, lower, digit, symbol, other bool
}

func (c charClasses) count() int {
	n := 0
	for _, present := range []bool{c.upper, c.lower, c.digit, c.symbol, c.other} {
		if present {
			n++
		}
	}
	return n
}

func classify(s string) charClasses {
	var c charClasses
	for _, r := range s {
		switch {
		case unicode.IsUpper(r):
			c.upper = true
		case unicode.IsLower(r):
			c.lower = true
		case unicode.IsDigit(r):
			c.digit = true
		case strings.ContainsRune(PasswordSymbols, r):
			c.symbol = true
		default:
			c.other = true
		}
	}
	return c
}

// strengthOf scores one point per character class and one each for
// reaching 12 and 16 characters. A password that passed validation already
// scores 4 from its classes, so the length bonus and any extra class
// (spaces, non-ASCII symbols) decide the level.
func strengthOf(length int, c charClasses) PasswordStrength {
	score := c.count()
	if length >= 12 {
		score++
	}
	if length >= 16 {
		score++
	}

	switch {
	case score >= 6:
		return StrengthStrong
	case score >= 5:
		return StrengthMedium
	default:
		return StrengthWeak
	}
}
