package model

// Flow and handler inputs. Validation happens in the flows before any
// network call is made.

type RegistrationInput struct {
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	CountryCode string `json:"countryCode"`
	Phone       string `json:"phone"`
}

type LoginInput struct {
	CountryCode string `json:"countryCode"`
	Phone       string `json:"phone"`
}

type OTPSubmitInput struct {
	Phone string `json:"phone"`
	Code  string `json:"otp"`
}

type ProfileUpdateInput struct {
	Name       string   `json:"name"`
	Email      string   `json:"email"`
	Phone      string   `json:"phone"`
	ProfileURL string   `json:"profileURL"`
	Bio        string   `json:"bio"`
	Skills     []string `json:"skills"`
}

type ContactInput struct {
	UserID  string `json:"userId,omitempty"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	Mobile  string `json:"mobile"`
	Subject string `json:"subject"`
	Message string `json:"message,omitempty"`
}
