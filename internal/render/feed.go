package render

import (
	"fmt"
	"path"
	"time"

	"github.com/gorilla/feeds"

	"github.com/inkpress-dev/inkpress/internal/content"
)

// WriteFeeds emits Atom and RSS feeds of the release posts. The feed's
// updated time is the newest release date, not the build time, so
// identical inputs produce identical feeds.
func (r *Renderer) WriteFeeds(releases []content.Entry) (bool, error) {
	var updated time.Time
	for _, rel := range releases {
		if rel.Date.After(updated) {
			updated = rel.Date
		}
	}
	feed := &feeds.Feed{
		Title:       r.cfg.Site.Title + " Releases",
		Link:        &feeds.Link{Href: r.cfg.Site.BaseURL},
		Description: r.cfg.Site.Description,
		Updated:     updated,
	}
	for _, rel := range releases {
		feed.Items = append(feed.Items, &feeds.Item{
			Title:       rel.Post.Meta.Title(),
			Link:        &feeds.Link{Href: r.AbsHref(r.PostPath(rel.Slug()))},
			Description: rel.Post.Meta.Description(),
			Created:     rel.Date,
			Id:          r.AbsHref(r.PostPath(rel.Slug())),
		})
	}
	atom, err := feed.ToAtom()
	if err != nil {
		return false, fmt.Errorf("render: atom feed: %w", err)
	}
	rss, err := feed.ToRss()
	if err != nil {
		return false, fmt.Errorf("render: rss feed: %w", err)
	}
	atomChanged, err := r.writeFile(path.Join("feeds", "releases.atom"), []byte(atom))
	if err != nil {
		return false, err
	}
	rssChanged, err := r.writeFile(path.Join("feeds", "releases.rss"), []byte(rss))
	if err != nil {
		return false, err
	}
	return atomChanged || rssChanged, nil
}
