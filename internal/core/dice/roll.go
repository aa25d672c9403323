// Package dice resolves Godlike dice-pool rolls.
//
// A pool has three kinds of ten-sided dice. Regular dice are rolled; hard
// dice always count as the maximum face and wiggle dice are wildcards the
// player sets after the roll, so both are reported as fixed markers rather
// than drawn.
package dice

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
)

const (
	// Sides is the face count of every die in a pool.
	Sides = 10
	// MaxPool is the largest number of dice a single roll may use.
	MaxPool = 10

	// HardMarker stands in for each hard die in a result line.
	HardMarker = "**10**"
	// WiggleMarker stands in for each wiggle die in a result line.
	WiggleMarker = "WIG"

	// Usage describes the roll command text format.
	Usage = "/glroll rd hd wd reason for rolling"
)

// ErrMalformedRequest indicates roll text that could not be parsed.
var ErrMalformedRequest = errors.New("malformed roll request")

// ErrTooManyDice indicates a pool above MaxPool dice.
var ErrTooManyDice = errors.New("too many dice")

// Source supplies randomness for regular dice.
//
// Implementations must be safe for concurrent use.
type Source interface {
	// Intn returns a non-negative random int in [0, n).
	Intn(n int) int
}

// Pool counts the dice of each kind in one roll.
type Pool struct {
	Regular int
	Hard    int
	Wiggle  int
}

// Total returns the number of dice in the pool.
func (p Pool) Total() int {
	return p.Regular + p.Hard + p.Wiggle
}

// Validate checks counts are non-negative and the pool fits MaxPool.
func (p Pool) Validate() error {
	if p.Regular < 0 || p.Hard < 0 || p.Wiggle < 0 {
		return fmt.Errorf("%w: dice counts must be non-negative", ErrMalformedRequest)
	}
	// Each count is checked alone first so the sum cannot overflow.
	if p.Regular > MaxPool || p.Hard > MaxPool || p.Wiggle > MaxPool || p.Total() > MaxPool {
		return fmt.Errorf("%w: %d dice requested, maximum is %d", ErrTooManyDice, p.Total(), MaxPool)
	}
	return nil
}

// String formats the pool as "rd hd wd".
func (p Pool) String() string {
	return fmt.Sprintf("%d %d %d", p.Regular, p.Hard, p.Wiggle)
}

// Request is a parsed roll command.
type Request struct {
	Pool
	Reason string
}

// ParseRequest parses "<regular> [hard] [wiggle] [reason...]".
//
// Hard and wiggle default to zero. Every token after the third is part of
// the reason, joined by single spaces. The pool is not validated.
func ParseRequest(text string) (Request, error) {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return Request{}, fmt.Errorf("%w: regular dice count is required", ErrMalformedRequest)
	}

	var counts [3]int
	for i := 0; i < len(counts) && i < len(fields); i++ {
		n, err := parseCount(fields[i])
		if err != nil {
			return Request{}, err
		}
		counts[i] = n
	}

	var reason string
	if len(fields) > len(counts) {
		reason = strings.Join(fields[len(counts):], " ")
	}
	return Request{
		Pool:   Pool{Regular: counts[0], Hard: counts[1], Wiggle: counts[2]},
		Reason: reason,
	}, nil
}

// ParsePool parses exactly "<regular> <hard> <wiggle>" and validates it.
func ParsePool(text string) (Pool, error) {
	fields := strings.Fields(text)
	if len(fields) != 3 {
		return Pool{}, fmt.Errorf("%w: expected three dice counts, got %d", ErrMalformedRequest, len(fields))
	}
	var counts [3]int
	for i, field := range fields {
		n, err := parseCount(field)
		if err != nil {
			return Pool{}, err
		}
		counts[i] = n
	}
	pool := Pool{Regular: counts[0], Hard: counts[1], Wiggle: counts[2]}
	if err := pool.Validate(); err != nil {
		return Pool{}, err
	}
	return pool, nil
}

func parseCount(token string) (int, error) {
	n, err := strconv.Atoi(token)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%w: %q is not a dice count", ErrMalformedRequest, token)
	}
	return n, nil
}

// Outcome is a resolved roll.
type Outcome struct {
	Request
	// Faces holds the drawn regular-die faces in ascending order.
	Faces []int
}

// Resolve validates the pool and draws its regular dice.
func Resolve(src Source, request Request) (Outcome, error) {
	if src == nil {
		return Outcome{}, errors.New("dice source is required")
	}
	if err := request.Validate(); err != nil {
		return Outcome{}, err
	}

	results := make([]int, request.Regular)
	for i := range results {
		results[i] = src.Intn(Sides) + 1
	}
	slices.Sort(results)

	return Outcome{Request: request, Faces: results}, nil
}

// Results lists the sorted regular faces, then hard markers, then wiggle
// markers.
func (o Outcome) Results() []string {
	out := make([]string, 0, o.Total())
	for _, value := range o.Faces {
		out = append(out, strconv.Itoa(value))
	}
	for i := 0; i < o.Hard; i++ {
		out = append(out, HardMarker)
	}
	for i := 0; i < o.Wiggle; i++ {
		out = append(out, WiggleMarker)
	}
	return out
}

// Summary renders the outcome as a chat message.
func (o Outcome) Summary() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Rolling **%d**-rd **%d**-hd **%d**-wg\n\n", o.Regular, o.Hard, o.Wiggle)
	if o.Reason != "" {
		fmt.Fprintf(&b, "For: *%s*\n\n", o.Reason)
	}
	b.WriteString("*" + strings.Join(o.Results(), " ") + "*")
	return b.String()
}
