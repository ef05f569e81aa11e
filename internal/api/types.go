package api

import "time"

// AuthMethod is the sign-in provider the backend recorded for a user
type AuthMethod string

const (
	AuthMethodGoogle AuthMethod = "google"
	AuthMethodEmail  AuthMethod = "email"
	AuthMethodPhone  AuthMethod = "phone"
)

// WalletType selects which balance a withdrawal draws from
type WalletType string

const (
	WalletEarnings WalletType = "earnings"
	WalletReferral WalletType = "referral"
)

// BackendIdentity is the result of exchanging an identity-provider token with
// the backend. UserID is empty for users that have not completed their profile.
type BackendIdentity struct {
	UserExists  bool       `json:"user_exists"`
	UserID      string     `json:"user_id"`
	Email       string     `json:"email"`
	PhoneNumber string     `json:"phone_number"`
	FirebaseUID string     `json:"firebase_uid"`
	AuthMethod  AuthMethod `json:"auth_method"`
	IsActivated bool       `json:"is_activated"`
}

// UserSkill is a skill attached to a user profile
type UserSkill struct {
	SkillID          string `json:"skill_id"`
	SkillName        string `json:"skill_name"`
	ProficiencyLevel int    `json:"proficiency_level"`
	YearsExperience  int    `json:"years_experience"`
}

// PortfolioItem is a past-work entry on a user profile
type PortfolioItem struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	ProjectURL  string `json:"project_url"`
	CreatedAt   string `json:"created_at"`
}

// UserProfile is the backend's record for a registered user
type UserProfile struct {
	UserID         string          `json:"user_id"`
	FullName       string          `json:"full_name"`
	Email          string          `json:"email"`
	PhoneNumber    string          `json:"phone_number"`
	StreetAddress  string          `json:"street_address"`
	HouseNumber    string          `json:"house_number"`
	ZipCode        string          `json:"zip_code"`
	Town           string          `json:"town"`
	IsActivated    bool            `json:"is_activated"`
	EarningsWallet float64         `json:"earnings_wallet"`
	ReferralWallet float64         `json:"referral_wallet"`
	TotalEarnings  float64         `json:"total_earnings"`
	Rating         float64         `json:"rating"`
	TotalReviews   int             `json:"total_reviews"`
	IsAvailable    bool            `json:"is_available"`
	ReferralCode   string          `json:"referral_code"`
	Skills         []UserSkill     `json:"skills"`
	Portfolio      []PortfolioItem `json:"portfolio"`
	DateJoined     string          `json:"date_joined"`
}

// CompleteProfileRequest creates the backend user record for a verified identity
type CompleteProfileRequest struct {
	FirebaseUID   string     `json:"firebase_uid"`
	Email         string     `json:"email"`
	FullName      string     `json:"full_name"`
	PhoneNumber   string     `json:"phone_number"`
	StreetAddress string     `json:"street_address"`
	HouseNumber   string     `json:"house_number"`
	ZipCode       string     `json:"zip_code"`
	Town          string     `json:"town"`
	AuthMethod    AuthMethod `json:"auth_method,omitempty"`
	ReferralCode  string     `json:"referral_code,omitempty"`
}

// CompleteProfileResponse acknowledges profile creation
type CompleteProfileResponse struct {
	Success      bool   `json:"success"`
	Message      string `json:"message"`
	UserID       string `json:"user_id"`
	ReferralCode string `json:"referral_code"`
}

// Overview is the dashboard summary for a user
type Overview struct {
	WalletBalance           float64 `json:"wallet_balance"`
	EarningsWallet          float64 `json:"earnings_wallet"`
	ReferralWallet          float64 `json:"referral_wallet"`
	TotalCompletedJobs      int     `json:"total_completed_jobs"`
	PendingJobs             int     `json:"pending_jobs"`
	ReferralEarnings        float64 `json:"referral_earnings"`
	UnreadMessages          int     `json:"unread_messages"`
	DateJoined              string  `json:"date_joined"`
	IsActivated             bool    `json:"is_activated"`
	Rating                  float64 `json:"rating"`
	TotalReviews            int     `json:"total_reviews"`
	PendingApplications     int     `json:"pending_applications"`
	AssignedJobs            int     `json:"assigned_jobs"`
	LastEarningsWithdrawal  string  `json:"last_earnings_withdrawal,omitempty"`
}

// ActivationRequest initiates a mobile-money activation payment
type ActivationRequest struct {
	UserID      string  `json:"user_id"`
	PhoneNumber string  `json:"phone_number"`
	Amount      float64 `json:"amount"`
}

// ActivationResponse acknowledges a payment push to the user's phone.
// Completion is observed separately by polling the overview endpoint.
type ActivationResponse struct {
	Success           bool   `json:"success"`
	Message           string `json:"message"`
	CheckoutRequestID string `json:"CheckoutRequestID"`
}

// WithdrawalRequest asks the backend to pay out from a wallet
type WithdrawalRequest struct {
	UserID     string     `json:"user_id"`
	Amount     float64    `json:"amount"`
	WalletType WalletType `json:"wallet_type"`
}

// WithdrawalResponse acknowledges a withdrawal request
type WithdrawalResponse struct {
	Success   bool   `json:"success"`
	Message   string `json:"message"`
	RequestID string `json:"request_id"`
}

// JobSkill is a skill requirement on a job posting
type JobSkill struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Job is a marketplace job posting
type Job struct {
	ID              string     `json:"id"`
	Title           string     `json:"title"`
	Description     string     `json:"description"`
	Category        string     `json:"category"`
	ClientName      string     `json:"client_name"`
	ClientRating    float64    `json:"client_rating"`
	BudgetMin       float64    `json:"budget_min"`
	BudgetMax       float64    `json:"budget_max"`
	PaymentType     string     `json:"payment_type"`
	EstimatedHours  int        `json:"estimated_hours"`
	Duration        string     `json:"duration"`
	IsUrgent        bool       `json:"is_urgent"`
	CreatedAt       string     `json:"created_at"`
	ApplicantsCount int        `json:"applicants_count"`
	SkillsRequired  []JobSkill `json:"skills_required"`
}

// JobFilters narrows a job listing query. Zero values are omitted.
type JobFilters struct {
	CategoryID     string
	MinBudget      float64
	MaxBudget      float64
	SearchTerm     string
	SkillsRequired []string // skill IDs
}

// CreateJobRequest posts a new job. The client account must be activated.
type CreateJobRequest struct {
	ClientID       string   `json:"client_id"`
	Title          string   `json:"title"`
	Description    string   `json:"description"`
	CategoryID     string   `json:"category_id"`
	SkillsRequired []string `json:"skills_required,omitempty"` // skill IDs
	BudgetMin      float64  `json:"budget_min"`
	BudgetMax      float64  `json:"budget_max"`
	PaymentType    string   `json:"payment_type,omitempty"`
	EstimatedHours int      `json:"estimated_hours,omitempty"`
	Duration       string   `json:"duration,omitempty"`
	IsUrgent       bool     `json:"is_urgent,omitempty"`
}

// CreateJobResponse acknowledges a job posting
type CreateJobResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	JobID   string `json:"job_id"`
}

// JobApplicationRequest applies a freelancer to a job
type JobApplicationRequest struct {
	FreelancerID string   `json:"freelancer_id"`
	JobID        string   `json:"job_id"`
	CoverLetter  string   `json:"cover_letter"`
	HourlyRate   float64  `json:"hourly_rate,omitempty"`
	FixedPrice   float64  `json:"fixed_price,omitempty"`
	PortfolioIDs []string `json:"portfolio_ids,omitempty"`
}

// JobApplication is an application made by the current user
type JobApplication struct {
	ID        string  `json:"id"`
	JobID     string  `json:"job_id"`
	JobTitle  string  `json:"job_title"`
	Status    string  `json:"status"`
	AppliedAt string  `json:"applied_at"`
	Budget    float64 `json:"budget"`
}

// Message is a received marketplace message
type Message struct {
	ID          string `json:"id"`
	Sender      string `json:"sender"`
	SenderEmail string `json:"sender_email"`
	Subject     string `json:"subject"`
	Content     string `json:"content"`
	SentAt      string `json:"sent_at"`
	IsRead      bool   `json:"is_read"`
	JobID       string `json:"job_id"`
	JobTitle    string `json:"job_title"`
}

// SendMessageRequest sends a message to another user, optionally in a job context
type SendMessageRequest struct {
	SenderID    string `json:"sender_id"`
	RecipientID string `json:"recipient_id"`
	Subject     string `json:"subject,omitempty"`
	Content     string `json:"content"`
	JobID       string `json:"job_id,omitempty"`
}

// UserSearchResult is the outcome of looking up a user by email or referral code
type UserSearchResult struct {
	UserFound    bool    `json:"user_found"`
	UserID       string  `json:"user_id"`
	Email        string  `json:"email"`
	FullName     string  `json:"full_name"`
	ReferralCode string  `json:"referral_code"`
	Rating       float64 `json:"rating"`
	TotalReviews int     `json:"total_reviews"`
}

// Review is feedback received by a user on a completed job
type Review struct {
	ID           string  `json:"id"`
	JobTitle     string  `json:"job_title"`
	ReviewerName string  `json:"reviewer_name"`
	Rating       int     `json:"rating"`
	Comment      string  `json:"comment"`
	CreatedAt    string  `json:"created_at"`
	ReviewType   string  `json:"review_type"`
}

// ReviewSummary is a user's received reviews with their aggregate rating
type ReviewSummary struct {
	Reviews       []Review `json:"reviews"`
	AverageRating float64  `json:"average_rating"`
	TotalReviews  int      `json:"total_reviews"`
}

// Transaction is a wallet ledger entry
type Transaction struct {
	ID              string  `json:"id"`
	TransactionType string  `json:"transaction_type"`
	Amount          float64 `json:"amount"`
	WalletType      string  `json:"wallet_type"`
	Description     string  `json:"description"`
	CreatedAt       string  `json:"created_at"`
	Reference       string  `json:"reference"`
}

// Withdrawal is a past withdrawal request and its processing state
type Withdrawal struct {
	ID              string  `json:"id"`
	Amount          float64 `json:"amount"`
	WalletType      string  `json:"wallet_type"`
	Status          string  `json:"status"`
	RequestedAt     string  `json:"requested_at"`
	ProcessedAt     string  `json:"processed_at"`
	RejectionReason string  `json:"rejection_reason"`
}

// Notification is a user-visible notice (messages, announcements, withdrawals)
type Notification struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Message   string `json:"message"`
	Type      string `json:"type"`
	CreatedAt string `json:"created_at"`
	IsRead    bool   `json:"is_read"`
}

// AddSkillRequest attaches a skill to the current user's profile
type AddSkillRequest struct {
	UserID           string `json:"user_id"`
	SkillName        string `json:"skill_name"`
	ProficiencyLevel int    `json:"proficiency_level"`
	YearsExperience  int    `json:"years_experience"`
}

// UpdateProfileRequest edits mutable profile fields
type UpdateProfileRequest struct {
	UserID        string `json:"user_id"`
	FullName      string `json:"full_name,omitempty"`
	PhoneNumber   string `json:"phone_number,omitempty"`
	StreetAddress string `json:"street_address,omitempty"`
	HouseNumber   string `json:"house_number,omitempty"`
	ZipCode       string `json:"zip_code,omitempty"`
	Town          string `json:"town,omitempty"`
	IsAvailable   *bool  `json:"is_available,omitempty"`
}

// Ack is a generic success acknowledgement
type Ack struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// ParseTimestamp parses the backend's ISO-8601 timestamps.
// Returns the zero time for empty or malformed values.
func ParseTimestamp(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02T15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
