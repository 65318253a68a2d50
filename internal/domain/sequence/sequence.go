package sequence

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/erp/purchasing/internal/domain/shared"
)

const (
	// InitialLetters is the letter block of the first identifier of every prefix
	InitialLetters = "AAA"

	// DefaultDigitWidth is the zero padded width used when none is inherited
	DefaultDigitWidth = 4

	// MaxPrefixLength bounds the normalized prefix
	MaxPrefixLength = 255
)

var prefixPattern = regexp.MustCompile(`^[A-Z0-9_]+$`)

// Sequence is the persisted allocation state of one prefix
type Sequence struct {
	shared.BaseEntity
	shared.SoftDeletable
	Prefix   string
	LatestID string
}

// NormalizePrefix trims and uppercases raw, rejecting anything outside [A-Z0-9_]+
func NormalizePrefix(raw string) (string, error) {
	prefix := strings.ToUpper(strings.TrimSpace(raw))
	if prefix == "" {
		return "", shared.ErrInvalidPrefix.WithDetail("prefix", raw).WithDetail("reason", "prefix cannot be empty")
	}
	if len(prefix) > MaxPrefixLength {
		return "", shared.ErrInvalidPrefix.WithDetail("prefix", raw).
			WithDetail("reason", fmt.Sprintf("prefix cannot exceed %d characters", MaxPrefixLength))
	}
	if !prefixPattern.MatchString(prefix) {
		return "", shared.ErrInvalidPrefix.WithDetail("prefix", raw).
			WithDetail("reason", "prefix must contain only letters, digits and underscores")
	}
	return prefix, nil
}

// InitialID returns the first identifier of a prefix, e.g. PUR-AAA0001
func InitialID(prefix string) string {
	return formatID(prefix, InitialLetters, 1, DefaultDigitWidth)
}

// NewSequence creates the row state for a prefix seen for the first time
func NewSequence(rawPrefix string) (*Sequence, error) {
	prefix, err := NormalizePrefix(rawPrefix)
	if err != nil {
		return nil, err
	}
	return &Sequence{
		BaseEntity:    shared.NewBaseEntity(),
		SoftDeletable: shared.SoftDeletable{IsActive: true},
		Prefix:        prefix,
		LatestID:      InitialID(prefix),
	}, nil
}

// IncrementLetters advances a base-26 A..Z counter, most significant letter first.
// Z becomes AA, AZ becomes BA and ZZZ becomes AAAA.
func IncrementLetters(s string) string {
	b := []byte(strings.ToUpper(s))
	for i := len(b) - 1; i >= 0; i-- {
		if b[i] != 'Z' {
			b[i]++
			return string(b)
		}
		b[i] = 'A'
	}
	return strings.Repeat("A", len(s)+1)
}

// ParseID splits id into its letter block and digit block. ok is false when
// id is not of the form {prefix}-{letters}{digits}.
func ParseID(prefix, id string) (letters, digits string, ok bool) {
	pattern, err := regexp.Compile(`^` + regexp.QuoteMeta(prefix) + `-([A-Za-z]+)(\d+)$`)
	if err != nil {
		return "", "", false
	}
	m := pattern.FindStringSubmatch(id)
	if m == nil {
		return "", "", false
	}
	return strings.ToUpper(m[1]), m[2], true
}

// NextID computes the identifier following current. A current value that does
// not parse is replaced by the initial identifier and healed is reported.
// The digit block keeps its width, whatever that width is.
func NextID(prefix, current string) (next string, healed bool) {
	letters, digits, ok := ParseID(prefix, current)
	if !ok {
		return InitialID(prefix), true
	}

	if incremented, carry := incrementDigits(digits); !carry {
		return prefix + "-" + letters + incremented, false
	}
	return formatID(prefix, IncrementLetters(letters), 1, len(digits)), false
}

// incrementDigits adds one to a zero padded decimal string. carry is set when
// every digit was 9.
func incrementDigits(digits string) (string, bool) {
	b := []byte(digits)
	for i := len(b) - 1; i >= 0; i-- {
		if b[i] != '9' {
			b[i]++
			return string(b), false
		}
		b[i] = '0'
	}
	return "", true
}

// Allocate issues n consecutive identifiers and leaves LatestID at the last one
func (s *Sequence) Allocate(n int) (ids []string, healed bool, err error) {
	if !s.IsActive {
		return nil, false, shared.NewDomainError(shared.CodeInvalidState,
			fmt.Sprintf("Sequence %s is inactive", s.Prefix)).WithDetail("prefix", s.Prefix)
	}
	if n <= 0 {
		return nil, false, shared.NewValidationError("count", "count must be positive")
	}

	ids = make([]string, 0, n)
	current := s.LatestID
	for range n {
		next, h := NextID(s.Prefix, current)
		healed = healed || h
		ids = append(ids, next)
		current = next
	}
	s.LatestID = current
	s.Touch()
	return ids, healed, nil
}

// Reset rewinds the sequence. An empty resetTo restores the initial identifier.
func (s *Sequence) Reset(resetTo string) error {
	if resetTo == "" {
		resetTo = InitialID(s.Prefix)
	}
	if !strings.HasPrefix(resetTo, s.Prefix+"-") {
		return shared.NewValidationError("reset_to",
			fmt.Sprintf("Reset value must start with '%s-'", s.Prefix))
	}
	s.LatestID = resetTo
	s.Touch()
	return nil
}

// SetActive toggles the soft delete flag
func (s *Sequence) SetActive(active bool) {
	if active {
		s.Activate()
	} else {
		s.Deactivate()
	}
	s.Touch()
}

func formatID(prefix, letters string, value uint64, width int) string {
	return fmt.Sprintf("%s-%s%0*d", prefix, letters, width, value)
}
