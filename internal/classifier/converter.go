package classifier

import (
	"fmt"
	"sync"

	"github.com/liuzl/gocc"
)

var (
	t2s *gocc.OpenCC // Traditional to Simplified

	convertersOnce sync.Once
	convertersErr  error
)

// initConverters loads the OpenCC dictionary on first use.
func initConverters() error {
	convertersOnce.Do(func() {
		var err error
		t2s, err = gocc.New("t2s")
		if err != nil {
			convertersErr = fmt.Errorf("failed to initialize t2s converter: %w", err)
		}
	})
	return convertersErr
}

// ToSimplified converts traditional Chinese to simplified Chinese
func ToSimplified(text string) (string, error) {
	if err := initConverters(); err != nil {
		return "", err
	}
	return t2s.Convert(text)
}
