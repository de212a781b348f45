package model

type UserRole string

const (
	Learner UserRole = "learner"
	Teacher UserRole = "teacher"
	Admin   UserRole = "admin"
)
