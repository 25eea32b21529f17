package validation

import "strings"

// SignupParams is the raw signup payload.
type SignupParams struct {
	Email    string  `json:"email" validate:"required,email"`
	Password string  `json:"password" validate:"required,min=6"`
	Name     *string `json:"name"`
}

// SignupInput is a validated signup request.
type SignupInput struct {
	Email    string
	Password string
	Name     *string
}

// SigninParams is the raw signin payload.
type SigninParams struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// SigninInput is a validated signin request.
type SigninInput struct {
	Email    string
	Password string
}

// Signup validates registration input.
func (v *Validator) Signup(p SignupParams) (SignupInput, error) {
	p.Email = normalizeEmail(p.Email)
	if err := v.check(p); err != nil {
		return SignupInput{}, err
	}
	return SignupInput{Email: p.Email, Password: p.Password, Name: p.Name}, nil
}

// Signin validates credentials input.
func (v *Validator) Signin(p SigninParams) (SigninInput, error) {
	p.Email = normalizeEmail(p.Email)
	if err := v.check(p); err != nil {
		return SigninInput{}, err
	}
	return SigninInput{Email: p.Email, Password: p.Password}, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
