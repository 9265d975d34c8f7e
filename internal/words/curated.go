// internal/words/curated.go
package words

import (
	"context"
	"math/rand/v2"

	"github.com/jason-s-yu/babo/internal/models"
)

// curatedPairs are hand-picked pairs of same-category words that are easy to confuse.
var curatedPairs = []models.WordPair{
	{Category: "과일", WordA: "사과", WordB: "배"},
	{Category: "과일", WordA: "귤", WordB: "오렌지"},
	{Category: "과일", WordA: "수박", WordB: "멜론"},
	{Category: "과일", WordA: "포도", WordB: "블루베리"},
	{Category: "과일", WordA: "바나나", WordB: "망고"},
	{Category: "과일", WordA: "딸기", WordB: "체리"},

	{Category: "동물", WordA: "고양이", WordB: "강아지"},
	{Category: "동물", WordA: "호랑이", WordB: "사자"},
	{Category: "동물", WordA: "토끼", WordB: "다람쥐"},
	{Category: "동물", WordA: "독수리", WordB: "매"},
	{Category: "동물", WordA: "돌고래", WordB: "고래"},
	{Category: "동물", WordA: "펭귄", WordB: "오리"},

	{Category: "음식", WordA: "김치찌개", WordB: "된장찌개"},
	{Category: "음식", WordA: "짜장면", WordB: "짬뽕"},
	{Category: "음식", WordA: "치킨", WordB: "피자"},
	{Category: "음식", WordA: "떡볶이", WordB: "라볶이"},
	{Category: "음식", WordA: "라면", WordB: "우동"},
	{Category: "음식", WordA: "햄버거", WordB: "샌드위치"},
	{Category: "음식", WordA: "초밥", WordB: "회"},

	{Category: "스포츠", WordA: "축구", WordB: "야구"},
	{Category: "스포츠", WordA: "농구", WordB: "배구"},
	{Category: "스포츠", WordA: "테니스", WordB: "배드민턴"},
	{Category: "스포츠", WordA: "수영", WordB: "다이빙"},
	{Category: "스포츠", WordA: "스키", WordB: "스노보드"},

	{Category: "음료", WordA: "콜라", WordB: "사이다"},
	{Category: "음료", WordA: "커피", WordB: "녹차"},
	{Category: "음료", WordA: "우유", WordB: "두유"},
	{Category: "음료", WordA: "맥주", WordB: "소주"},

	{Category: "장소", WordA: "학교", WordB: "학원"},
	{Category: "장소", WordA: "바다", WordB: "수영장"},
	{Category: "장소", WordA: "카페", WordB: "식당"},
	{Category: "장소", WordA: "영화관", WordB: "놀이공원"},

	{Category: "직업", WordA: "의사", WordB: "간호사"},
	{Category: "직업", WordA: "경찰", WordB: "소방관"},
	{Category: "직업", WordA: "선생님", WordB: "교수"},
	{Category: "직업", WordA: "요리사", WordB: "제빵사"},

	{Category: "탈것", WordA: "버스", WordB: "지하철"},
	{Category: "탈것", WordA: "비행기", WordB: "기차"},

	{Category: "계절", WordA: "봄", WordB: "가을"},
	{Category: "계절", WordA: "여름", WordB: "겨울"},
}

// Curated picks pairs from a fixed table. It never fails.
type Curated struct {
	pairs []models.WordPair
	intn  func(int) int
}

// NewCurated returns a source over the built-in table.
func NewCurated() *Curated {
	return &Curated{pairs: curatedPairs, intn: rand.IntN}
}

// NewCuratedWith builds a curated source over a custom table and random function.
// The table must not be empty.
func NewCuratedWith(pairs []models.WordPair, intn func(int) int) *Curated {
	if len(pairs) == 0 {
		panic("words: curated table cannot be empty")
	}
	if intn == nil {
		intn = rand.IntN
	}
	return &Curated{pairs: pairs, intn: intn}
}

// Random returns a uniformly chosen pair from the whole table.
func (c *Curated) Random() models.WordPair {
	return c.pairs[c.intn(len(c.pairs))]
}

// Pair picks uniformly among the pairs of the given category.
// Returns ErrUnknownCategory when the table has none.
func (c *Curated) Pair(_ context.Context, category string) (models.WordPair, error) {
	var matches []models.WordPair
	for _, p := range c.pairs {
		if p.Category == category {
			matches = append(matches, p)
		}
	}
	if len(matches) == 0 {
		return models.WordPair{}, ErrUnknownCategory
	}
	return matches[c.intn(len(matches))], nil
}

// Categories lists the distinct categories in table order.
func (c *Curated) Categories() []string {
	seen := make(map[string]bool)
	var out []string
	for _, p := range c.pairs {
		if !seen[p.Category] {
			seen[p.Category] = true
			out = append(out, p.Category)
		}
	}
	return out
}
