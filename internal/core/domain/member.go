package domain

import (
	"encoding/json"
	"strconv"
	"strings"
)

// MemberID identifies one attendee. IDs are assigned by the profile sheet and
// are always positive.
type MemberID int64

func (id MemberID) Valid() bool {
	return id > 0
}

func (id MemberID) String() string {
	return strconv.FormatInt(int64(id), 10)
}

// ParseMemberID parses decimal text into a positive MemberID.
func ParseMemberID(s string) (MemberID, error) {
	v, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil || v <= 0 {
		return 0, ErrInvalidMemberID
	}
	return MemberID(v), nil
}

// OptionalMemberID is either absent or one valid MemberID.
type OptionalMemberID struct {
	id MemberID
	ok bool
}

func NoMember() OptionalMemberID {
	return OptionalMemberID{}
}

func SomeMember(id MemberID) OptionalMemberID {
	if !id.Valid() {
		return OptionalMemberID{}
	}
	return OptionalMemberID{id: id, ok: true}
}

func (o OptionalMemberID) Get() (MemberID, bool) {
	return o.id, o.ok
}

func (o OptionalMemberID) Present() bool {
	return o.ok
}

// Is reports whether o holds exactly id.
func (o OptionalMemberID) Is(id MemberID) bool {
	return o.ok && o.id == id
}

func (o OptionalMemberID) MarshalJSON() ([]byte, error) {
	if !o.ok {
		return []byte("null"), nil
	}
	return json.Marshal(int64(o.id))
}

// Profile is one attendee card as published by the profile sheet.
type Profile struct {
	ID          MemberID `json:"id"`
	Name        string   `json:"name"`
	Role        string   `json:"role"`
	Hitokoto    string   `json:"hitokoto"`
	Now         string   `json:"now"`
	Topic       string   `json:"topic"`
	Core        string   `json:"core"`
	AIQuestions string   `json:"ai_questions,omitempty"`
}

// Questions decodes the ai_questions column, which holds a JSON array of
// strings. Anything else yields no questions.
func (p Profile) Questions() []string {
	raw := strings.TrimSpace(p.AIQuestions)
	if raw == "" {
		return nil
	}
	var questions []string
	if err := json.Unmarshal([]byte(raw), &questions); err != nil {
		return nil
	}
	return questions
}

// DemoProfiles is the roster served when the profile sheet is not configured
// or cannot be reached.
func DemoProfiles() []Profile {
	return []Profile{
		{
			ID: 1, Name: "田中 太郎", Role: "Engineer",
			Hitokoto: "乾杯の音頭は任せてください", Now: "照明制御のリファクタリング",
			Topic: "週末のキャンプ", Core: "まず手を動かす",
			AIQuestions: `["最近キャンプで一番よかった場所は？","照明で一番難しかった現場は？"]`,
		},
		{
			ID: 2, Name: "鈴木 花子", Role: "Designer",
			Hitokoto: "二次会の店は調査済みです", Now: "展示のサイン計画",
			Topic: "陶芸教室", Core: "余白を残す",
			AIQuestions: `["最初に作った器は？"]`,
		},
		{
			ID: 3, Name: "佐藤 健一", Role: "Producer",
			Hitokoto: "遅れて行きます", Now: "海外巡回展の調整",
			Topic: "ランニング", Core: "約束は守る",
		},
		{
			ID: 4, Name: "高橋 美咲", Role: "Architect",
			Hitokoto: "日本酒派です", Now: "新しい常設展の設計",
			Topic: "建築巡り", Core: "境界をなくす",
			AIQuestions: `["最近見て感動した建築は？","日本酒のおすすめは？"]`,
		},
		{
			ID: 5, Name: "伊藤 大輔", Role: "Engineer",
			Hitokoto: "始発まで残ります", Now: "センサー基盤の更新",
			Topic: "自作キーボード", Core: "壊れても直せる仕組み",
		},
		{
			ID: 6, Name: "渡辺 さくら", Role: "Catalyst",
			Hitokoto: "はじめましての方、声かけてください", Now: "採用イベントの準備",
			Topic: "猫", Core: "人をつなぐ",
			AIQuestions: `["猫の名前の由来は？"]`,
		},
	}
}
