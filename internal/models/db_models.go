package models

import (
	"time"

	"github.com/uptrace/bun"
)

type UserDB struct {
	bun.BaseModel `bun:"table:users,alias:u"`

	ID        string    `bun:"id,pk,type:uuid,default:gen_random_uuid()" json:"id"`
	AccountID string    `bun:"account_id,notnull,unique" json:"account_id"`
	Email     string    `bun:"email" json:"email"`
	Tokens    int       `bun:"tokens,notnull,default:5" json:"tokens"`
	CreatedAt time.Time `bun:"created_at,notnull,default:current_timestamp" json:"created_at"`
	UpdatedAt time.Time `bun:"updated_at,notnull,default:current_timestamp" json:"updated_at"`
}

func (u *UserDB) ToUser() *User {
	return &User{
		ID:        u.ID,
		AccountID: u.AccountID,
		Email:     u.Email,
		Tokens:    u.Tokens,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

func UserFromDomain(user *User) *UserDB {
	return &UserDB{
		ID:        user.ID,
		AccountID: user.AccountID,
		Email:     user.Email,
		Tokens:    user.Tokens,
		CreatedAt: user.CreatedAt,
		UpdatedAt: user.UpdatedAt,
	}
}
