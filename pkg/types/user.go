package types

type UserPlan string

const (
	USER_PLAN_GUEST   UserPlan = "guest"
	USER_PLAN_REGULAR UserPlan = "regular"
	USER_PLAN_PRO     UserPlan = "pro"
)

type User struct {
	ID        string   `json:"id" db:"id"`
	Email     string   `json:"email" db:"email"`
	Password  string   `json:"-" db:"password"`
	Plan      UserPlan `json:"plan" db:"plan"`
	CreatedAt int64    `json:"created_at" db:"created_at"`
}
