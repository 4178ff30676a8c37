package link

import "time"

// SeedLinks returns the starter collection saved on first run.
func SeedLinks() []Link {
	day := func(d int) time.Time { return time.Date(2024, time.January, d, 0, 0, 0, 0, time.UTC) }

	seed := []struct {
		id, url, title, description, folder string
		tags                                []string
		created                             time.Time
	}{
		{"1", "https://www.linkedin.com/", "LinkedIn", "Jobs and professional networking", Work, []string{"networking", "jobs", "professional"}, day(20)},
		{"2", "https://www.upwork.com/", "Upwork", "Freelance work", Work, []string{"freelance", "remote work", "projects"}, day(19)},
		{"3", "https://www.fiverr.com/", "Fiverr", "Buy and sell small services", Work, []string{"services", "gigs", "marketplace"}, day(18)},
		{"5", "https://www.coursera.org/", "Coursera", "University courses online", Study, []string{"courses", "university", "certificates"}, day(16)},
		{"7", "https://www.khanacademy.org/", "Khan Academy", "Free lessons in math and science", Study, []string{"free", "math", "science"}, day(14)},
		{"9", "https://www.reddit.com/", "Reddit", "Communities and discussions", Fun, []string{"community", "discussion"}, day(12)},
		{"10", "https://www.youtube.com/", "YouTube", "Videos", Fun, []string{"videos", "entertainment"}, day(11)},
		{"13", "https://mail.google.com/", "Gmail", "Personal email", Personal, []string{"email", "google"}, day(8)},
	}

	links := make([]Link, 0, len(seed))
	for _, s := range seed {
		links = append(links, Link{
			ID:          s.id,
			URL:         s.url,
			Title:       s.title,
			Description: s.description,
			Folder:      s.folder,
			Tags:        s.tags,
			CreatedAt:   s.created,
		})
	}
	return links
}
