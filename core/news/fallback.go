package news

import "strings"

var (
	javaArticles = []Article{
		{
			Title:       "Java 21 New Features Released",
			Description: "Latest Java LTS version introduces virtual threads and pattern matching.",
			URL:         "https://example.com/java21",
		},
		{
			Title:       "Spring Framework 6.0 Update",
			Description: "Major release with improved performance and new capabilities.",
			URL:         "https://example.com/spring6",
		},
		{
			Title:       "Java in Cloud Native Development",
			Description: "How Java is adapting to modern cloud infrastructure trends.",
			URL:         "https://example.com/java-cloud",
		},
	}

	pythonArticles = []Article{
		{
			Title:       "Python 3.12 Performance Improvements",
			Description: "Latest Python version shows significant speed enhancements.",
			URL:         "https://example.com/python312",
		},
		{
			Title:       "Machine Learning with Python Trends",
			Description: "New libraries and frameworks emerging in the Python ML ecosystem.",
			URL:         "https://example.com/python-ml",
		},
	}

	edtechArticles = []Article{
		{
			Title:       "Educational Technology Trends 2024",
			Description: "AI and machine learning are transforming modern classrooms.",
			URL:         "https://example.com/edtech-trends",
		},
		{
			Title:       "Virtual Reality in Education",
			Description: "Schools adopting VR technology for immersive learning experiences.",
			URL:         "https://example.com/vr-education",
		},
		{
			Title:       "Remote Learning Platforms Evolution",
			Description: "Latest updates in online education tools and student engagement.",
			URL:         "https://example.com/remote-learning",
		},
	}
)

// Fallback returns canned articles matching the query topic.
func Fallback(query string) []Article {
	q := strings.ToLower(query)
	var src []Article
	switch {
	case strings.Contains(q, "java"):
		src = javaArticles
	case strings.Contains(q, "python"):
		src = pythonArticles
	default:
		src = edtechArticles
	}
	out := make([]Article, len(src))
	copy(out, src)
	return out
}
