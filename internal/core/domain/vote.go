package domain

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// VoteChoice is one of the three after-party answers. The zero value is not a
// valid choice; "no vote yet" is modelled by OptionalChoice.
type VoteChoice int

const (
	ChoiceGoing     VoteChoice = 1
	ChoiceUndecided VoteChoice = 2
	ChoiceLeaving   VoteChoice = 3
)

func (c VoteChoice) Valid() bool {
	return c >= ChoiceGoing && c <= ChoiceLeaving
}

func (c VoteChoice) String() string {
	switch c {
	case ChoiceGoing:
		return "going"
	case ChoiceUndecided:
		return "undecided"
	case ChoiceLeaving:
		return "leaving"
	default:
		return "invalid(" + strconv.Itoa(int(c)) + ")"
	}
}

// Wire returns the numeric form used by the remote API.
func (c VoteChoice) Wire() int {
	return int(c)
}

// ParseChoiceWire maps the remote API's 1/2/3 onto a VoteChoice.
func ParseChoiceWire(v int) (VoteChoice, error) {
	c := VoteChoice(v)
	if !c.Valid() {
		return 0, fmt.Errorf("%w: %d", ErrInvalidChoice, v)
	}
	return c, nil
}

// ParseChoice accepts either the wire digit or a name ("go", "maybe", "home",
// "going", "undecided", "leaving").
func ParseChoice(s string) (VoteChoice, error) {
	switch s {
	case "1", "go", "going":
		return ChoiceGoing, nil
	case "2", "maybe", "undecided":
		return ChoiceUndecided, nil
	case "3", "home", "leaving":
		return ChoiceLeaving, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidChoice, s)
}

// OptionalChoice is either absent or one valid VoteChoice.
type OptionalChoice struct {
	choice VoteChoice
	ok     bool
}

func NoChoice() OptionalChoice {
	return OptionalChoice{}
}

func SomeChoice(c VoteChoice) OptionalChoice {
	if !c.Valid() {
		return OptionalChoice{}
	}
	return OptionalChoice{choice: c, ok: true}
}

func (o OptionalChoice) Get() (VoteChoice, bool) {
	return o.choice, o.ok
}

func (o OptionalChoice) Present() bool {
	return o.ok
}

func (o OptionalChoice) String() string {
	if !o.ok {
		return "none"
	}
	return o.choice.String()
}

// MarshalJSON encodes the wire digit, or null when absent.
func (o OptionalChoice) MarshalJSON() ([]byte, error) {
	if !o.ok {
		return []byte("null"), nil
	}
	return json.Marshal(o.choice.Wire())
}

func (o *OptionalChoice) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*o = NoChoice()
		return nil
	}
	var v int
	if err := json.Unmarshal(b, &v); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidChoice, b)
	}
	c, err := ParseChoiceWire(v)
	if err != nil {
		return err
	}
	*o = SomeChoice(c)
	return nil
}

type VoteMember struct {
	ID   MemberID `json:"id"`
	Name string   `json:"name"`
}

// VoteStatus is one aggregate snapshot of the after-party vote. Counts and
// member lists always come from the same response. Leavers are only counted.
type VoteStatus struct {
	SurvivalRate int            `json:"survival_rate"`
	TotalVoted   int            `json:"total_voted"`
	TotalMembers int            `json:"total_members"`
	MyStatus     OptionalChoice `json:"my_status"`
	GoCount      int            `json:"go_count"`
	MaybeCount   int            `json:"maybe_count"`
	HomeCount    int            `json:"home_count"`
	GoMembers    []VoteMember   `json:"go_members"`
	MaybeMembers []VoteMember   `json:"maybe_members"`
}

// Clone returns a deep copy so callers never share the member slices.
func (s *VoteStatus) Clone() *VoteStatus {
	if s == nil {
		return nil
	}
	c := *s
	c.GoMembers = append([]VoteMember(nil), s.GoMembers...)
	c.MaybeMembers = append([]VoteMember(nil), s.MaybeMembers...)
	return &c
}

// DemoVoteStatus is the fixed snapshot served when no remote endpoint is
// configured or a status fetch fails.
func DemoVoteStatus() *VoteStatus {
	return &VoteStatus{
		SurvivalRate: 75,
		TotalVoted:   20,
		TotalMembers: 24,
		MyStatus:     NoChoice(),
		GoCount:      5,
		MaybeCount:   10,
		HomeCount:    5,
		GoMembers: []VoteMember{
			{ID: 1, Name: "田中 太郎"},
			{ID: 3, Name: "佐藤 健一"},
			{ID: 5, Name: "伊藤 大輔"},
			{ID: 7, Name: "山本 翔太"},
			{ID: 9, Name: "小林 勇気"},
		},
		MaybeMembers: []VoteMember{
			{ID: 2, Name: "鈴木 花子"},
			{ID: 4, Name: "高橋 美咲"},
			{ID: 6, Name: "渡辺 さくら"},
			{ID: 8, Name: "中村 麻衣"},
			{ID: 10, Name: "加藤 理恵"},
			{ID: 12, Name: "吉田 直樹"},
			{ID: 14, Name: "山田 彩"},
			{ID: 16, Name: "佐々木 亮"},
			{ID: 18, Name: "松本 優子"},
			{ID: 20, Name: "井上 拓海"},
		},
	}
}
