package wallet

import "github.com/congo-pay/wallet_ledger/internal/validation"

const maxFieldChars = 255

// CreateInput captures data required to create a wallet.
type CreateInput struct {
	Name            string `json:"name"`
	ClientFirstname string `json:"client_firstname"`
	ClientSurname   string `json:"client_surname"`
}

func (in CreateInput) validate() error {
	var v validation.Validator
	checkField(&v, "name", in.Name)
	checkField(&v, "client_firstname", in.ClientFirstname)
	checkField(&v, "client_surname", in.ClientSurname)
	return v.Err()
}

// UpdateInput is a partial update; absent fields are left untouched.
type UpdateInput struct {
	Name            *string `json:"name"`
	ClientFirstname *string `json:"client_firstname"`
	ClientSurname   *string `json:"client_surname"`
}

func (in UpdateInput) validate() error {
	var v validation.Validator
	v.Check(in.Name != nil || in.ClientFirstname != nil || in.ClientSurname != nil, "at least one field must be provided")
	if in.Name != nil {
		checkField(&v, "name", *in.Name)
	}
	if in.ClientFirstname != nil {
		checkField(&v, "client_firstname", *in.ClientFirstname)
	}
	if in.ClientSurname != nil {
		checkField(&v, "client_surname", *in.ClientSurname)
	}
	return v.Err()
}

func checkField(v *validation.Validator, field, value string) {
	v.Check(validation.NotBlank(value), field+" must not be blank")
	v.Check(validation.MaxChars(value, maxFieldChars), field+" must not be more than 255 characters")
}

// Summary is the list view of a wallet; balances are only shown per wallet.
type Summary struct {
	ID              int64  `json:"id"`
	Name            string `json:"name"`
	ClientFirstname string `json:"client_firstname"`
	ClientSurname   string `json:"client_surname"`
}
