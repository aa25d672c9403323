package errors

import (
	stderrors "errors"
	"fmt"
	"testing"
)

func TestErrorIsMatchesByCode(t *testing.T) {
	err := fmt.Errorf("outer: %w", New(CodeTooManyDice, "pool too large"))

	if !HasCode(err, CodeTooManyDice) {
		t.Fatal("expected wrapped error to match code")
	}
	if HasCode(err, CodeNotFound) {
		t.Fatal("expected different code not to match")
	}
}

func TestGetCode(t *testing.T) {
	if got := GetCode(Wrap(CodePersistenceFailure, "insert", stderrors.New("disk"))); got != CodePersistenceFailure {
		t.Fatalf("code = %s, want %s", got, CodePersistenceFailure)
	}
	if got := GetCode(stderrors.New("plain")); got != CodeUnknown {
		t.Fatalf("code = %s, want %s", got, CodeUnknown)
	}
}

func TestWrapKeepsCauseInChain(t *testing.T) {
	cause := stderrors.New("database is locked")
	err := Wrap(CodePersistenceFailure, "replace stats", cause)

	if !stderrors.Is(err, cause) {
		t.Fatal("expected cause in chain")
	}
	if err.Error() != "replace stats: database is locked" {
		t.Fatalf("error = %q", err.Error())
	}
}

func TestUserMessageHidesInternalCauses(t *testing.T) {
	err := WrapWithMetadata(CodePersistenceFailure, "create character", map[string]string{"Action": "create new character"}, stderrors.New("SQLITE_BUSY"))

	if got := UserMessage(err, "en-US"); got != "Failed to create new character." {
		t.Fatalf("user message = %q", got)
	}
	if got := UserMessage(stderrors.New("SQLITE_BUSY"), "en-US"); got != "Something went wrong. Please try again." {
		t.Fatalf("user message = %q", got)
	}
}

func TestUserMessageLocalizes(t *testing.T) {
	err := WithMetadata(CodeNotFound, "lookup", map[string]string{"Nickname": "Rex"})

	if got := UserMessage(err, "pt-BR"); got != "Nenhum personagem encontrado para Rex" {
		t.Fatalf("user message = %q", got)
	}
}

func TestIsUserError(t *testing.T) {
	if !CodeTooManyDice.IsUserError() {
		t.Fatal("expected too many dice to be a user error")
	}
	if CodePersistenceFailure.IsUserError() {
		t.Fatal("expected persistence failure to be an operator error")
	}
	if CodeUnknown.IsUserError() {
		t.Fatal("expected unknown to be an operator error")
	}
}
