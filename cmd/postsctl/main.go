// Command postsctl drives a postsync session from the terminal: it reads
// posts, comments, tags and user profiles through the query cache and runs
// comment mutations against the configured backend.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/url"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"text/tabwriter"

	"github.com/jonwraymond/postsync/app"
	"github.com/jonwraymond/postsync/config"
	"github.com/jonwraymond/postsync/filter"
	"github.com/jonwraymond/postsync/health"
	"github.com/jonwraymond/postsync/posts"
)

const usage = `usage: postsctl [flags] <command> [args]

commands:
  posts [query]                      list posts; query uses skip, limit, search, sortBy, sortOrder, tag
  comments <postID>                  list a post's comments
  user <id>                          show a user profile
  tags                               list tags
  like <postID> <commentID>          like a comment
  delete-comment <postID> <commentID> delete a comment
  health                             check the backend and cache

flags:
`

var errUsage = errors.New("usage")

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	os.Exit(run(ctx, os.Args[1:], os.Stdout, os.Stderr))
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("postsctl", flag.ContinueOnError)
	fs.SetOutput(stderr)
	baseURL := fs.String("base-url", "", "backend base URL (default: POSTSYNC_BASE_URL)")
	logLevel := fs.String("log-level", "", "log level: debug|info|warn|error (default: POSTSYNC_LOG_LEVEL)")
	fs.Usage = func() {
		_, _ = fmt.Fprint(stderr, usage)
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() == 0 {
		fs.Usage()
		return 2
	}

	cfg, err := config.Load()
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "postsctl: %v\n", err)
		return 1
	}
	if *baseURL != "" {
		cfg.BaseURL = *baseURL
	}
	if *logLevel != "" {
		cfg.Telemetry.LogLevel = *logLevel
	}
	if err := cfg.Validate(); err != nil {
		_, _ = fmt.Fprintf(stderr, "postsctl: %v\n", err)
		return 1
	}

	cmd, rest := fs.Arg(0), fs.Args()[1:]
	var loc filter.Location
	if cmd == "posts" && len(rest) > 0 {
		q, err := url.ParseQuery(strings.TrimPrefix(rest[0], "?"))
		if err != nil {
			_, _ = fmt.Fprintf(stderr, "postsctl: bad query: %v\n", err)
			return 2
		}
		loc = filter.NewHistory(q)
	}
	var opts []app.Option
	opts = append(opts, app.WithLogWriter(stderr))
	if loc != nil {
		opts = append(opts, app.WithLocation(loc))
	}

	s, err := app.New(ctx, cfg, opts...)
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "postsctl: %v\n", err)
		return 1
	}
	defer func() { _ = s.Close(context.WithoutCancel(ctx)) }()

	err = dispatch(ctx, s, cmd, rest, stdout)
	switch {
	case errors.Is(err, errUsage):
		fs.Usage()
		return 2
	case err != nil:
		_, _ = fmt.Fprintf(stderr, "postsctl: %v\n", err)
		return 1
	}
	return 0
}

func dispatch(ctx context.Context, s *app.Session, cmd string, args []string, w io.Writer) error {
	switch cmd {
	case "posts":
		return listPosts(ctx, s, w)
	case "comments":
		ids, err := intArgs(args, 1)
		if err != nil {
			return err
		}
		return listComments(ctx, s, ids[0], w)
	case "user":
		ids, err := intArgs(args, 1)
		if err != nil {
			return err
		}
		return showUser(ctx, s, ids[0], w)
	case "tags":
		return listTags(ctx, s, w)
	case "like":
		ids, err := intArgs(args, 2)
		if err != nil {
			return err
		}
		return likeComment(ctx, s, ids[0], ids[1], w)
	case "delete-comment":
		ids, err := intArgs(args, 2)
		if err != nil {
			return err
		}
		return deleteComment(ctx, s, ids[0], ids[1], w)
	case "health":
		rep := s.Report(ctx)
		if err := rep.WriteJSON(w); err != nil {
			return err
		}
		if rep.Status == health.StatusUnhealthy {
			return errors.New("unhealthy")
		}
		return nil
	}
	return fmt.Errorf("%w: unknown command %q", errUsage, cmd)
}

func intArgs(args []string, n int) ([]int, error) {
	if len(args) != n {
		return nil, fmt.Errorf("%w: want %d arguments", errUsage, n)
	}
	out := make([]int, n)
	for i, a := range args {
		v, err := strconv.Atoi(a)
		if err != nil {
			return nil, fmt.Errorf("%w: %q is not an id", errUsage, a)
		}
		out[i] = v
	}
	return out, nil
}

func listPosts(ctx context.Context, s *app.Session, w io.Writer) error {
	page, err := s.Posts(ctx)
	if err != nil {
		return err
	}
	state := s.Filter.Read()

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "ID\tTITLE\tAUTHOR\tLIKES\tTAGS")
	for _, p := range page.Posts {
		author := "-"
		if p.Author != nil {
			author = p.Author.Username
		}
		_, _ = fmt.Fprintf(tw, "%d\t%s\t%s\t%d\t%s\n",
			p.ID, highlight(p.Title, state.SearchQuery), author, p.Reactions.Likes, strings.Join(p.Tags, ","))
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	pg := state.Pagination(page.Total)
	_, err = fmt.Fprintf(w, "page %d/%d, %d posts", pg.Page(), pg.Pages(), page.Total)
	if pg.HasPrev() {
		_, _ = fmt.Fprintf(w, ", prev skip=%d", pg.Prev())
	}
	if pg.HasNext() {
		_, _ = fmt.Fprintf(w, ", next skip=%d", pg.Next())
	}
	_, _ = fmt.Fprintln(w)
	return err
}

// highlight brackets search matches.
func highlight(text, query string) string {
	var b strings.Builder
	for _, seg := range posts.Highlight(text, query) {
		if seg.Match {
			b.WriteString("[" + seg.Text + "]")
			continue
		}
		b.WriteString(seg.Text)
	}
	return b.String()
}

func listComments(ctx context.Context, s *app.Session, postID int, w io.Writer) error {
	page, err := s.Comments(ctx, postID)
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "ID\tUSER\tLIKES\tBODY")
	for _, c := range page.Comments {
		_, _ = fmt.Fprintf(tw, "%d\t%s\t%d\t%s\n", c.ID, c.User.Username, c.Likes, c.Body)
	}
	return tw.Flush()
}

func showUser(ctx context.Context, s *app.Session, id int, w io.Writer) error {
	p, err := s.OpenUserProfile(ctx, id)
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	rows := [][2]string{
		{"username", p.Username},
		{"name", p.FullName()},
		{"age", strconv.Itoa(p.Age)},
		{"email", p.Email},
		{"phone", p.Phone},
		{"address", strings.Join([]string{p.Address.Address, p.Address.City, p.Address.State}, ", ")},
		{"company", p.Company.Name + " (" + p.Company.Title + ")"},
	}
	for _, r := range rows {
		_, _ = fmt.Fprintf(tw, "%s\t%s\n", r[0], r[1])
	}
	return tw.Flush()
}

func listTags(ctx context.Context, s *app.Session, w io.Writer) error {
	list, err := s.Tags(ctx)
	if err != nil {
		return err
	}
	for _, t := range list {
		_, _ = fmt.Fprintf(w, "%s\t%s\n", t.Slug, t.Name)
	}
	return nil
}

func likeComment(ctx context.Context, s *app.Session, postID, commentID int, w io.Writer) error {
	s.OpenPostDetail(posts.Post{ID: postID})
	if _, err := s.Comments(ctx, postID); err != nil {
		return err
	}
	c, err := s.LikeComment(ctx, commentID)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "comment %d now has %d likes\n", c.ID, c.Likes)
	return err
}

func deleteComment(ctx context.Context, s *app.Session, postID, commentID int, w io.Writer) error {
	s.OpenPostDetail(posts.Post{ID: postID})
	if err := s.DeleteComment(ctx, commentID); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "comment %d deleted\n", commentID)
	return err
}
