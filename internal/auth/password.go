package auth

import "golang.org/x/crypto/bcrypt"

// HashPassword hashes a plaintext password with the given bcrypt cost. A cost
// below bcrypt's minimum, including the zero value of an unset config, falls
// back to the library default.
func HashPassword(password string, cost int) (string, error) {
	if cost < bcrypt.MinCost {
		cost = bcrypt.DefaultCost
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// ComparePassword reports whether plain matches the stored hash.
func ComparePassword(hashed, plain string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(plain))
}
