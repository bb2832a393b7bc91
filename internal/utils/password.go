package utils

import "golang.org/x/crypto/bcrypt"

// HashPassword hashes a console account password with bcrypt at the
// configured cost. The seeder is the only writer of password hashes; the
// service has no self-registration.
func HashPassword(plain string, cost int) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(plain), cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// VerifyPassword reports whether plain matches the stored bcrypt hash.
// The comparison is constant-time; a missing hash (the Split Bot account
// has none) simply never matches.
func VerifyPassword(hash, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}
