package models

// UserType тип аккаунта пользователя
type UserType string

const (
	TypeSeller UserType = "seller"
	TypeUser   UserType = "user"
)

// TokenPayload представляет аутентифицированного пользователя из JWT
type TokenPayload struct {
	ID              int64      `json:"id"`
	Types           []UserType `json:"types"`
	ProfileComplete bool       `json:"profile_complete"`
	Blocked         bool       `json:"blocked"`
}

// HasType проверяет наличие типа аккаунта у пользователя
func (p TokenPayload) HasType(t UserType) bool {
	for _, pt := range p.Types {
		if pt == t {
			return true
		}
	}
	return false
}

// UserShort представляет краткую информацию о пользователе для API
type UserShort struct {
	ID        int64  `json:"id" bson:"id"`
	Name      string `json:"name" bson:"name"`
	City      string `json:"city,omitempty" bson:"city,omitempty"`
	AvatarURL string `json:"avatar_url,omitempty" bson:"avatar_url,omitempty"`

	// Заполняется только при выдаче сообщений, в базе не хранится
	IsMe bool `json:"is_me,omitempty" bson:"-"`
}

// HasSellerType проверяет наличие типа "seller" в списке типов
func HasSellerType(types []UserType) bool {
	for _, t := range types {
		if t == TypeSeller {
			return true
		}
	}
	return false
}
