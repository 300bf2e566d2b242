package target

import "time"

// Row models below exist for schema migration; writes go through Repository
// with column maps checked against the registry in tables.go.

type Profile struct {
	ID          string    `gorm:"column:id;size:64;primaryKey"`
	UserID      string    `gorm:"column:user_id;size:64;index"`
	DisplayName string    `gorm:"column:display_name;size:255"`
	Email       string    `gorm:"column:email;size:255"`
	AvatarURL   string    `gorm:"column:avatar_url;type:text"`
	Bio         string    `gorm:"column:bio;type:text"`
	CreatedAt   time.Time `gorm:"column:created_at"`
	UpdatedAt   time.Time `gorm:"column:updated_at"`
}

func (Profile) TableName() string { return "profiles" }

type Customer struct {
	ID        string    `gorm:"column:id;size:64;primaryKey"`
	Name      string    `gorm:"column:name;size:255"`
	Email     string    `gorm:"column:email;size:255"`
	Phone     string    `gorm:"column:phone;size:64"`
	Company   string    `gorm:"column:company;size:255"`
	Notes     string    `gorm:"column:notes;type:text"`
	CreatedAt time.Time `gorm:"column:created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

func (Customer) TableName() string { return "customers" }

type Document struct {
	ID           string    `gorm:"column:id;size:64;primaryKey"`
	Title        string    `gorm:"column:title;size:255"`
	FileName     string    `gorm:"column:file_name;size:255"`
	HTMLContent  string    `gorm:"column:html_content;type:text"`
	ShareToken   string    `gorm:"column:share_token;size:64;index"`
	PasswordHash string    `gorm:"column:password_hash;size:255"`
	IsPublic     bool      `gorm:"column:is_public"`
	OwnerID      string    `gorm:"column:owner_id;size:64"`
	CreatedAt    time.Time `gorm:"column:created_at"`
	UpdatedAt    time.Time `gorm:"column:updated_at"`
}

func (Document) TableName() string { return "documents" }

type Note struct {
	ID         string    `gorm:"column:id;size:64;primaryKey"`
	Title      string    `gorm:"column:title;size:255"`
	Content    string    `gorm:"column:content;type:text"`
	CustomerID string    `gorm:"column:customer_id;size:64;index"`
	AuthorID   string    `gorm:"column:author_id;size:64"`
	CreatedAt  time.Time `gorm:"column:created_at"`
	UpdatedAt  time.Time `gorm:"column:updated_at"`
}

func (Note) TableName() string { return "notes" }

type MemberDocument struct {
	ID         string     `gorm:"column:id;size:64;primaryKey"`
	MemberID   string     `gorm:"column:member_id;size:64;index"`
	DocumentID string     `gorm:"column:document_id;size:64;index"`
	GrantedBy  string     `gorm:"column:granted_by;size:64"`
	ExpiresAt  *time.Time `gorm:"column:expires_at"`
	CreatedAt  time.Time  `gorm:"column:created_at"`
	UpdatedAt  time.Time  `gorm:"column:updated_at"`
}

func (MemberDocument) TableName() string { return "member_documents" }

type Subscription struct {
	ID         string     `gorm:"column:id;size:64;primaryKey"`
	CustomerID string     `gorm:"column:customer_id;size:64;index"`
	ProductID  string     `gorm:"column:product_id;size:64"`
	Status     string     `gorm:"column:status;size:32"`
	StartsAt   *time.Time `gorm:"column:starts_at"`
	EndsAt     *time.Time `gorm:"column:ends_at"`
	CreatedAt  time.Time  `gorm:"column:created_at"`
	UpdatedAt  time.Time  `gorm:"column:updated_at"`
}

func (Subscription) TableName() string { return "subscriptions" }

// Models returns every allow-listed row model, for AutoMigrate.
func Models() []any {
	return []any{&Profile{}, &Customer{}, &Document{}, &Note{}, &MemberDocument{}, &Subscription{}}
}
