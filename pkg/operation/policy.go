package operation

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Kind is the CRUD verb an operation performs. It drives synthesized messages.
type Kind int

const (
	KindFetch Kind = iota + 1
	KindCreate
	KindUpdate
	KindDelete
)

var kindNames = map[Kind]string{
	KindFetch:  "fetch",
	KindCreate: "create",
	KindUpdate: "update",
	KindDelete: "delete",
}

// ParseKind accepts the wire names "fetch", "create", "update" and "delete".
func ParseKind(s string) (Kind, error) {
	needle := strings.ToLower(strings.TrimSpace(s))
	for k, name := range kindNames {
		if name == needle {
			return k, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownKind, s)
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

func (k Kind) valid() bool {
	_, ok := kindNames[k]
	return ok
}

// pastTense and infinitive feed the "<Entity> created successfully" / "Failed to create <entity>" templates.
func (k Kind) pastTense() string {
	switch k {
	case KindFetch:
		return "loaded"
	case KindCreate:
		return "created"
	case KindUpdate:
		return "updated"
	case KindDelete:
		return "deleted"
	}
	return "processed"
}

func (k Kind) infinitive() string {
	switch k {
	case KindFetch:
		return "load"
	case KindCreate:
		return "create"
	case KindUpdate:
		return "update"
	case KindDelete:
		return "delete"
	}
	return "process"
}

// Policy declares how one call site wants its outcome surfaced.
// Empty SuccessMessage/ErrorMessage mean "synthesize from Kind and Entity".
type Policy struct {
	Kind            Kind
	Entity          string
	NotifyOnSuccess bool
	NotifyOnError   bool
	SuccessMessage  string
	ErrorMessage    string
}

// Fetch, Create, Update and Delete build the policies most call sites use:
// reads report errors only, writes report both.
func Fetch(entity string) Policy {
	return Policy{Kind: KindFetch, Entity: entity, NotifyOnError: true}
}

func Create(entity string) Policy {
	return Policy{Kind: KindCreate, Entity: entity, NotifyOnSuccess: true, NotifyOnError: true}
}

func Update(entity string) Policy {
	return Policy{Kind: KindUpdate, Entity: entity, NotifyOnSuccess: true, NotifyOnError: true}
}

func Delete(entity string) Policy {
	return Policy{Kind: KindDelete, Entity: entity, NotifyOnSuccess: true, NotifyOnError: true}
}

// WithSuccess returns a copy with a custom success message.
func (p Policy) WithSuccess(msg string) Policy {
	p.SuccessMessage = msg
	return p
}

// WithError returns a copy with a custom error message.
func (p Policy) WithError(msg string) Policy {
	p.ErrorMessage = msg
	return p
}

// Quiet returns a copy that never notifies.
func (p Policy) Quiet() Policy {
	p.NotifyOnSuccess = false
	p.NotifyOnError = false
	return p
}

// Validate rejects unknown kinds. The entity label is required only when an
// enabled notification has no custom message to fall back on.
func (p Policy) Validate() error {
	if !p.Kind.valid() {
		return fmt.Errorf("%w: %s", ErrInvalidPolicy, p.Kind)
	}
	synthesized := (p.NotifyOnSuccess && p.SuccessMessage == "") || (p.NotifyOnError && p.ErrorMessage == "")
	if synthesized && strings.TrimSpace(p.Entity) == "" {
		return fmt.Errorf("%w: entity label is required", ErrInvalidPolicy)
	}
	return nil
}

// SuccessText is the message shown when the operation succeeds.
func (p Policy) SuccessText() string {
	if p.SuccessMessage != "" {
		return p.SuccessMessage
	}
	return capitalize(strings.TrimSpace(p.Entity)) + " " + p.Kind.pastTense() + " successfully"
}

// ErrorText is the message shown when the operation fails.
func (p Policy) ErrorText() string {
	if p.ErrorMessage != "" {
		return p.ErrorMessage
	}
	return "Failed to " + p.Kind.infinitive() + " " + strings.TrimSpace(p.Entity)
}

var upper = cases.Upper(language.Und)

func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return upper.String(string(r)) + s[size:]
}
