package ui

// Carousel is the position inside a cake's image list. A looping carousel
// wraps around at both ends; a bounded one stops and disables the button.
type Carousel struct {
	Index int
	Count int
	Loop  bool
}

// Dot is one page indicator.
type Dot struct {
	Index  int
	Active bool
}

// NewCarousel returns a carousel over count slides positioned at index,
// normalising out-of-range positions.
func NewCarousel(count, index int, loop bool) Carousel {
	c := Carousel{Count: count, Loop: loop}
	return c.Go(index)
}

// Go moves to slide i.
func (c Carousel) Go(i int) Carousel {
	if c.Count <= 0 {
		c.Index = 0
		return c
	}
	if c.Loop {
		c.Index = ((i % c.Count) + c.Count) % c.Count
		return c
	}
	switch {
	case i < 0:
		c.Index = 0
	case i >= c.Count:
		c.Index = c.Count - 1
	default:
		c.Index = i
	}
	return c
}

func (c Carousel) Next() Carousel { return c.Go(c.Index + 1) }
func (c Carousel) Prev() Carousel { return c.Go(c.Index - 1) }

// HasPrev is false on the first slide of a bounded carousel.
func (c Carousel) HasPrev() bool {
	if c.Count <= 1 {
		return false
	}
	return c.Loop || c.Index > 0
}

// HasNext is false on the last slide of a bounded carousel.
func (c Carousel) HasNext() bool {
	if c.Count <= 1 {
		return false
	}
	return c.Loop || c.Index < c.Count-1
}

func (c Carousel) Dots() []Dot {
	dots := make([]Dot, c.Count)
	for i := range dots {
		dots[i] = Dot{Index: i, Active: i == c.Index}
	}
	return dots
}
