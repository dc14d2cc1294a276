package domain

import "time"

// User представляет пользователя панели управления.
// Пароль никогда не возвращается сервером и поэтому здесь отсутствует.
type User struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// TelegramAccount представляет подключенный аккаунт Telegram.
type TelegramAccount struct {
	ID          int64     `json:"id"`
	User        *User     `json:"user,omitempty"`
	PhoneNumber string    `json:"phone_number"`
	APIID       string    `json:"api_id"`
	APIHash     string    `json:"api_hash,omitempty"` // только на запись, сервер его не отдает
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TelegramGroup представляет группу, за которой наблюдает один из аккаунтов.
type TelegramGroup struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	GroupID   int64     `json:"group_id"`
	Username  string    `json:"username,omitempty"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// GroupMessage - сообщение, собранное из группы.
type GroupMessage struct {
	ID          int64     `json:"id"`
	GroupID     int64     `json:"group_id"`
	MessageID   int64     `json:"message_id"`
	SenderID    int64     `json:"sender_id,omitempty"`
	SenderName  string    `json:"sender_name"`
	Text        string    `json:"text"`
	Date        time.Time `json:"date"`
	IsProcessed bool      `json:"is_processed"`
}

// Association связывает аккаунт с группой, которую он собирает.
type Association struct {
	ID             int64            `json:"id"`
	Account        *TelegramAccount `json:"account"`
	Group          *TelegramGroup   `json:"group"`
	IsActive       bool             `json:"is_active"`
	JoinedAt       time.Time        `json:"joined_at"`
	LastCollection *time.Time       `json:"last_collection"`
}

// Summary - сводка переписки группы за период.
type Summary struct {
	ID        int64          `json:"id"`
	Group     *TelegramGroup `json:"group"`
	StartDate time.Time      `json:"start_date"`
	EndDate   time.Time      `json:"end_date"`
	Content   string         `json:"content"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// GroupID возвращает идентификатор группы сводки или 0, если группа не вложена в ответ.
func (s Summary) GroupID() int64 {
	if s.Group == nil {
		return 0
	}
	return s.Group.ID
}

// Feedback - оценка сводки пользователем.
type Feedback struct {
	ID        int64     `json:"id"`
	Summary   int64     `json:"summary"`
	User      string    `json:"user,omitempty"`
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment"`
	CreatedAt time.Time `json:"created_at"`
}

// JobStatus представляет статус асинхронной задачи генерации сводки.
type JobStatus string

const (
	JobStatusPending    JobStatus = "pending"
	JobStatusProcessing JobStatus = "processing"
	JobStatusCompleted  JobStatus = "completed"
	JobStatusFailed     JobStatus = "failed"
)

// Done сообщает, является ли статус конечным.
func (s JobStatus) Done() bool {
	return s == JobStatusCompleted || s == JobStatusFailed
}

// SummaryJob описывает задачу генерации сводки на бэкенде.
type SummaryJob struct {
	ID           string    `json:"job_id"`
	Status       JobStatus `json:"status"`
	GroupID      int64     `json:"group_id"`
	Days         int       `json:"days"`
	SummaryID    int64     `json:"summary_id,omitempty"`
	Summary      *Summary  `json:"summary,omitempty"`
	ErrorMessage string    `json:"error_message,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}
