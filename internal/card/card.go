package card

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"strconv"
	"strings"
)

// Value is a playable estimate. Joker means "no estimate" and sorts last.
type Value int

const (
	One      Value = 1
	Two      Value = 2
	Three    Value = 3
	Five     Value = 5
	Eight    Value = 8
	Thirteen Value = 13
	Joker    Value = -1
)

// Values lists every playable value in rank order.
var Values = []Value{One, Two, Three, Five, Eight, Thirteen, Joker}

// ErrInvalidValue is returned when a value is not one of Values.
var ErrInvalidValue = errors.New("invalid card value")

// ErrInvalidSuit is returned when a suit is not one of Suits.
var ErrInvalidSuit = errors.New("invalid card suit")

const jokerName = "joker"

// Valid reports whether v is one of Values.
func (v Value) Valid() bool {
	return v.Rank() >= 0
}

// Rank returns the position of v in Values, or -1 for unknown values.
func (v Value) Rank() int {
	for i, candidate := range Values {
		if candidate == v {
			return i
		}
	}
	return -1
}

// Numeric returns the point value and false for Joker.
func (v Value) Numeric() (int, bool) {
	if v == Joker || !v.Valid() {
		return 0, false
	}
	return int(v), true
}

// Display returns the face shown on the card.
func (v Value) Display() string {
	switch v {
	case One:
		return "A"
	case Thirteen:
		return "K"
	case Joker:
		return "🃏"
	case Two, Three, Five, Eight:
		return fmt.Sprintf("%d", int(v))
	default:
		return ""
	}
}

func (v Value) String() string {
	if v == Joker {
		return jokerName
	}
	return fmt.Sprintf("%d", int(v))
}

// MarshalJSON encodes numeric values as numbers and Joker as "joker".
func (v Value) MarshalJSON() ([]byte, error) {
	if v == Joker {
		return json.Marshal(jokerName)
	}
	return json.Marshal(int(v))
}

// UnmarshalJSON accepts a number or the string "joker".
func (v *Value) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err == nil {
		if name != jokerName {
			return fmt.Errorf("%w: %q", ErrInvalidValue, name)
		}
		*v = Joker
		return nil
	}

	var n int
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidValue, string(data))
	}
	parsed := Value(n)
	if parsed == Joker || !parsed.Valid() {
		return fmt.Errorf("%w: %d", ErrInvalidValue, n)
	}
	*v = parsed
	return nil
}

// ParseValue parses "joker" or one of the numeric values.
func ParseValue(s string) (Value, error) {
	s = strings.TrimSpace(s)
	if strings.EqualFold(s, jokerName) {
		return Joker, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidValue, s)
	}
	v := Value(n)
	if v == Joker || !v.Valid() {
		return 0, fmt.Errorf("%w: %d", ErrInvalidValue, n)
	}
	return v, nil
}

// Suit is cosmetic only.
type Suit string

const (
	Diamonds Suit = "diamonds"
	Clubs    Suit = "clubs"
	Hearts   Suit = "hearts"
	Spades   Suit = "spades"
)

// Suits lists every suit.
var Suits = []Suit{Diamonds, Clubs, Hearts, Spades}

// Valid reports whether s is one of Suits.
func (s Suit) Valid() bool {
	switch s {
	case Diamonds, Clubs, Hearts, Spades:
		return true
	}
	return false
}

// Color is "red" for diamonds and hearts, "black" otherwise.
func (s Suit) Color() string {
	if s == Diamonds || s == Hearts {
		return "red"
	}
	return "black"
}

// Symbol returns the unicode suit glyph.
func (s Suit) Symbol() string {
	switch s {
	case Diamonds:
		return "♦"
	case Clubs:
		return "♣"
	case Hearts:
		return "♥"
	case Spades:
		return "♠"
	}
	return ""
}

// RandomSuit picks a suit uniformly at random.
func RandomSuit() Suit {
	return Suits[rand.Intn(len(Suits))]
}

// Card is an immutable played card.
type Card struct {
	Value        Value  `json:"value"`
	Suit         Suit   `json:"suit"`
	DisplayValue string `json:"displayValue"`
}

// New creates a card with the given value and a random suit.
func New(v Value) Card {
	return Card{
		Value:        v,
		Suit:         RandomSuit(),
		DisplayValue: v.Display(),
	}
}

// Normalize validates c and returns it with the display value derived from
// its value. An empty suit is replaced with a random one.
func Normalize(c Card) (Card, error) {
	if !c.Value.Valid() {
		return Card{}, fmt.Errorf("%w: %v", ErrInvalidValue, int(c.Value))
	}
	if c.Suit == "" {
		c.Suit = RandomSuit()
	} else if !c.Suit.Valid() {
		return Card{}, fmt.Errorf("%w: %q", ErrInvalidSuit, c.Suit)
	}
	c.DisplayValue = c.Value.Display()
	return c, nil
}

// Deck returns one fresh card per value, in value order.
func Deck() []Card {
	deck := make([]Card, 0, len(Values))
	for _, v := range Values {
		deck = append(deck, New(v))
	}
	return deck
}

// Average returns the mean of the numeric cards rounded to one decimal.
// Nil cards and jokers are skipped; false means nothing was counted.
func Average(cards []*Card) (float64, bool) {
	var (
		sum   int
		count int
	)
	for _, c := range cards {
		if c == nil {
			continue
		}
		n, ok := c.Value.Numeric()
		if !ok {
			continue
		}
		sum += n
		count++
	}
	if count == 0 {
		return 0, false
	}
	return math.Round(float64(sum)/float64(count)*10) / 10, true
}

// Count is how many times a value was played.
type Count struct {
	Value        Value  `json:"value"`
	DisplayValue string `json:"displayValue"`
	Count        int    `json:"count"`
}

// Tally counts played values in value order, omitting values nobody played.
func Tally(cards []*Card) []Count {
	counts := make(map[Value]int, len(Values))
	for _, c := range cards {
		if c != nil {
			counts[c.Value]++
		}
	}

	out := make([]Count, 0, len(counts))
	for _, v := range Values {
		if n := counts[v]; n > 0 {
			out = append(out, Count{Value: v, DisplayValue: v.Display(), Count: n})
		}
	}
	return out
}
