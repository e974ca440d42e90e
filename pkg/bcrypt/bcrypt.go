package bcrypt

import "golang.org/x/crypto/bcrypt"

type IBcrypt interface {
	HashPassword(password string) (string, error)
	ComparePassword(hashPassword string, password string) error
}

type bcryptService struct {
	cost int
}

func New() IBcrypt {
	return &bcryptService{
		cost: bcrypt.DefaultCost,
	}
}

// NewWithCost exists for tests, where the default cost is too slow.
func NewWithCost(cost int) IBcrypt {
	return &bcryptService{
		cost: cost,
	}
}

func (b *bcryptService) HashPassword(password string) (string, error) {
	result, err := bcrypt.GenerateFromPassword([]byte(password), b.cost)
	if err != nil {
		return "", err
	}
	return string(result), nil
}

func (b *bcryptService) ComparePassword(hashPassword string, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashPassword), []byte(password))
}
