package entity

// User perfil cacheado del usuario autenticado (la fuente de verdad es el backend).
type User struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Role      string `json:"role"` // customer | vendor | admin
	AvatarURL string `json:"avatarUrl,omitempty"`
}

// Session estado de autenticación persistido localmente.
type Session struct {
	IsAuthenticated bool  `json:"isAuthenticated"`
	User            *User `json:"user,omitempty"`
}
