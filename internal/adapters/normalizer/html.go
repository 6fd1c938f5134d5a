package normalizer

import (
	"net/url"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-shiori/go-readability"
	"golang.org/x/net/html"

	"wiki-quiz/internal/domain"
)

const (
	// PlaceholderTitle подставляется, если заголовок не найден.
	PlaceholderTitle = "Untitled Article"

	summaryThreshold = 500
	summaryCap       = 1200
	maxPeople        = 10
)

// contentSelectors перечисляет контейнеры тела статьи по убыванию приоритета.
var contentSelectors = []string{"#mw-content-text", "article", "main", "body"}

var (
	bracketMarker  = regexp.MustCompile(`\[.*?\]`)
	capitalizedTok = regexp.MustCompile(`\b[A-Z][a-zA-Z]+\b`)
	spaceRun       = regexp.MustCompile(`\s+`)
)

var stopWords = map[string]struct{}{"the": {}, "a": {}, "an": {}, "and": {}}

// HTML разбирает разметку страницы в domain.Article.
type HTML struct{}

// New создаёт нормализатор.
func New() *HTML {
	return &HTML{}
}

// Normalize строит структурированную статью. Отсутствие контента не ошибка:
// заголовок получает заглушку, списки остаются пустыми.
func (n *HTML) Normalize(pageURL, markup string) (domain.Article, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return domain.Article{}, &domain.NormalizeError{URL: pageURL, Err: err}
	}
	doc.Find("script, style, noscript, template").Remove()

	content := contentRoot(doc)
	rawText := flatten(doc.Nodes...)

	article := domain.Article{
		URL:         pageURL,
		Title:       extractTitle(doc, pageURL, markup),
		Summary:     extractSummary(content),
		Sections:    extractSections(content),
		KeyEntities: extractEntities(rawText),
		RawText:     rawText,
	}
	return article, nil
}

func contentRoot(doc *goquery.Document) *goquery.Selection {
	for _, sel := range contentSelectors {
		if found := doc.Find(sel).First(); found.Length() > 0 {
			return found
		}
	}
	return doc.Selection
}

func extractTitle(doc *goquery.Document, pageURL, markup string) string {
	if title := flatten(doc.Find("h1").First().Nodes...); title != "" {
		return title
	}
	var parsed *url.URL
	if u, err := url.Parse(pageURL); err == nil && u.Host != "" {
		parsed = u
	}
	if article, err := readability.FromReader(strings.NewReader(markup), parsed); err == nil {
		if title := strings.TrimSpace(article.Title); title != "" {
			return title
		}
	}
	return PlaceholderTitle
}

// extractSummary копит абзацы, пока длина склейки не превысит порог, и режет до лимита.
func extractSummary(content *goquery.Selection) string {
	var parts []string
	content.Find("p").EachWithBreak(func(_ int, p *goquery.Selection) bool {
		if text := flatten(p.Nodes...); text != "" {
			parts = append(parts, text)
		}
		return utf8.RuneCountInString(strings.Join(parts, " ")) <= summaryThreshold
	})
	return truncateRunes(strings.Join(parts, " "), summaryCap)
}

func extractSections(content *goquery.Selection) []string {
	sections := make([]string, 0)
	seen := make(map[string]struct{})
	content.Find("h2, h3").Each(func(_ int, h *goquery.Selection) {
		cleaned := strings.TrimSpace(bracketMarker.ReplaceAllString(flatten(h.Nodes...), ""))
		if cleaned == "" {
			return
		}
		if _, dup := seen[cleaned]; dup {
			return
		}
		seen[cleaned] = struct{}{}
		sections = append(sections, cleaned)
	})
	return sections
}

// extractEntities заполняет только корзину people: организации и места
// этой эвристикой не распознаются.
func extractEntities(rawText string) domain.KeyEntities {
	entities := domain.NewKeyEntities()
	seen := make(map[string]struct{})
	people := entities[domain.EntityPeople]
	for _, tok := range capitalizedTok.FindAllString(rawText, -1) {
		if len(people) == maxPeople {
			break
		}
		if _, stop := stopWords[strings.ToLower(tok)]; stop {
			continue
		}
		if _, dup := seen[tok]; dup {
			continue
		}
		seen[tok] = struct{}{}
		people = append(people, tok)
	}
	entities[domain.EntityPeople] = people
	return entities
}

// flatten склеивает текстовые узлы через пробел и схлопывает пробельные серии.
func flatten(nodes ...*html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(node *html.Node) {
		switch node.Type {
		case html.TextNode:
			if text := strings.TrimSpace(node.Data); text != "" {
				b.WriteString(text)
				b.WriteByte(' ')
			}
			return
		case html.CommentNode, html.DoctypeNode:
			return
		}
		for child := node.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	for _, node := range nodes {
		walk(node)
	}
	return strings.TrimSpace(spaceRun.ReplaceAllString(b.String(), " "))
}

func truncateRunes(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	runes := []rune(s)
	return string(runes[:limit])
}

