package models

// RoleType defines the user role type
type RoleType string

const (
	RoleStudent RoleType = "STUDENT"
	RoleAlumni  RoleType = "ALUMNI"
	RoleAdmin   RoleType = "ADMIN"
)

// ConnectionStatus represents the lifecycle state of a connection request
type ConnectionStatus string

const (
	ConnectionPending  ConnectionStatus = "PENDING"
	ConnectionAccepted ConnectionStatus = "ACCEPTED"
	ConnectionRejected ConnectionStatus = "REJECTED"
	ConnectionBlocked  ConnectionStatus = "BLOCKED"
)

// JobType categorizes job postings
type JobType string

const (
	JobFullTime   JobType = "FULL_TIME"
	JobPartTime   JobType = "PART_TIME"
	JobInternship JobType = "INTERNSHIP"
	JobContract   JobType = "CONTRACT"
)

// ApplicationStatus tracks a job application through review
type ApplicationStatus string

const (
	ApplicationApplied     ApplicationStatus = "APPLIED"
	ApplicationShortlisted ApplicationStatus = "SHORTLISTED"
	ApplicationRejected    ApplicationStatus = "REJECTED"
	ApplicationHired       ApplicationStatus = "HIRED"
)
