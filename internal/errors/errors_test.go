package errors

import (
	stderrors "errors"
	"fmt"
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRunError(t *testing.T) {
	cause := stderrors.New("root must be an array of day records")
	err := MalformedInput("grade1/week1.txt", cause)

	assert.Equal(t, "grade1/week1.txt: malformed input: root must be an array of day records", err.Error())
	assert.ErrorIs(t, err, ErrMalformedInput)
	assert.ErrorIs(t, err, cause)
	assert.NotErrorIs(t, err, ErrIO)
	assert.Equal(t, CodeMalformedInput, CodeOf(err))
}

func TestIO(t *testing.T) {
	err := IO("week1.txt", "read", fs.ErrNotExist)

	assert.Equal(t, "week1.txt: read failed: file does not exist", err.Error())
	assert.ErrorIs(t, err, fs.ErrNotExist)
	assert.ErrorIs(t, fmt.Errorf("worker: %w", err), ErrIO)
	assert.Equal(t, CodeIO, CodeOf(fmt.Errorf("wrapped: %w", err)))
}

func TestInvalidConfig(t *testing.T) {
	err := InvalidConfig("workers must be positive, got %d", -1)

	assert.Equal(t, "workers must be positive, got -1", err.Error())
	assert.ErrorIs(t, err, ErrInvalidConfig)
	assert.Equal(t, CodeInvalidConfig, CodeOf(err))
}

func TestCodeOfPlainError(t *testing.T) {
	assert.Equal(t, Code(""), CodeOf(stderrors.New("plain")))
	assert.Equal(t, Code(""), CodeOf(nil))
}
