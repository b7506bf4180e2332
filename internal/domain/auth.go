package domain

// ActorClass differentiates the three independent session namespaces.
type ActorClass string

const (
	ActorConsumer ActorClass = "consumer"
	ActorBusiness ActorClass = "business"
	ActorAdmin    ActorClass = "admin"
)

// StorageKeys names the persisted items of one actor class.
// Type is empty for actor classes without a business type tag.
type StorageKeys struct {
	Token    string
	Identity string
	Type     string
}

// All returns every key owned by the actor class.
func (k StorageKeys) All() []string {
	keys := []string{k.Token, k.Identity}
	if k.Type != "" {
		keys = append(keys, k.Type)
	}
	return keys
}

var (
	ConsumerKeys = StorageKeys{Token: "auth_token", Identity: "auth_user"}
	BusinessKeys = StorageKeys{Token: "pro_token", Identity: "pro_owner", Type: "pro_type"}
	AdminKeys    = StorageKeys{Token: "admin_token", Identity: "admin_user"}
)

// Credentials is an email/password pair submitted on a login form.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}
