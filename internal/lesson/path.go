package lesson

import "fmt"

// Path locates a node inside a document, e.g.
// "day[0]/content[2]/contentObject[1]/content[3]".
type Path string

// DayPath is the path of the i-th day record.
func DayPath(i int) Path {
	return Path(fmt.Sprintf("day[%d]", i))
}

// BlockPath is the path of block j of day i.
func BlockPath(day, block int) Path {
	return DayPath(day).Index("content", block)
}

// Index appends an array element step.
func (p Path) Index(key string, i int) Path {
	return p.join(fmt.Sprintf("%s[%d]", key, i))
}

// Field appends an object key step.
func (p Path) Field(key string) Path {
	return p.join(key)
}

func (p Path) join(step string) Path {
	if p == "" {
		return Path(step)
	}
	return p + "/" + Path(step)
}

func (p Path) String() string {
	return string(p)
}
