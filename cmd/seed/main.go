package main

import (
	"context"
	"flag"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"blog-service/configs"
	"blog-service/internal/group"
	"blog-service/internal/migrate"
	"blog-service/internal/post"
	"blog-service/internal/shared/db"
	"blog-service/internal/shared/logx"
	"blog-service/internal/social"
	"blog-service/internal/user"

	"github.com/brianvoe/gofakeit/v6"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// Default password of every seeded account.
const password = "123456"

func main() {
	nUsers := flag.Int("users", 10, "users to create")
	nGroups := flag.Int("groups", 3, "groups to create")
	nPosts := flag.Int("posts", 50, "posts to create")
	nFollows := flag.Int("follows", 20, "follow edges to attempt")
	seed := flag.Int64("seed", time.Now().UnixNano(), "random seed")
	flag.Parse()

	cfg := configs.LoadConfig()
	log := logx.New(cfg.Env)
	defer func() { _ = log.Sync() }()

	store, err := db.Open(cfg.DBDriver, cfg.DSN())
	if err != nil {
		log.Fatal("db", zap.Error(err))
	}
	defer store.Close()
	if err := migrate.AutoMigrateAll(store); err != nil {
		log.Fatal("migrate", zap.Error(err))
	}

	gofakeit.Seed(*seed)
	rnd := rand.New(rand.NewSource(*seed))
	ctx := context.Background()

	users := seedUsers(ctx, log, user.NewServiceWithCost(user.NewRepository(store), bcrypt.MinCost), *nUsers)
	if len(users) == 0 {
		log.Fatal("no users created, aborting seeding process")
	}
	groups := seedGroups(ctx, log, group.NewRepository(store), *nGroups)

	posts := post.NewService(post.NewRepository(store), nil, nil, log)
	created := 0
	for i := 0; i < *nPosts; i++ {
		in := post.Form{Text: gofakeit.Paragraph(1, rnd.Intn(4)+1, 12, " ")}
		if len(groups) > 0 && rnd.Intn(2) == 0 {
			in.Group = &groups[rnd.Intn(len(groups))].ID
		}
		if _, err := posts.Create(ctx, users[rnd.Intn(len(users))], in, nil); err != nil {
			log.Warn("create post", zap.Error(err))
			continue
		}
		created++
	}

	follows := social.NewRepository(store)
	edges := 0
	for i := 0; i < *nFollows; i++ {
		a, b := users[rnd.Intn(len(users))], users[rnd.Intn(len(users))]
		ok, err := follows.Follow(ctx, a.ID, b.ID)
		if err != nil {
			log.Warn("follow", zap.Error(err))
			continue
		}
		if ok {
			edges++
		}
	}

	log.Info("seeding done",
		zap.Int("users", len(users)),
		zap.Int("groups", len(groups)),
		zap.Int("posts", created),
		zap.Int("follows", edges))
}

func seedUsers(ctx context.Context, log *zap.Logger, svc user.Service, n int) []user.User {
	out := make([]user.User, 0, n)
	for i := 0; i < n; i++ {
		name := strings.ToLower(gofakeit.Username())
		name = strings.Map(func(r rune) rune {
			if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
				return r
			}
			return -1
		}, name)
		if name == "" {
			name = fmt.Sprintf("user%d", i)
		}
		u, err := svc.Signup(ctx, name, password)
		if err != nil {
			log.Warn("signup", zap.String("username", name), zap.Error(err))
			continue
		}
		out = append(out, *u)
	}
	return out
}

func seedGroups(ctx context.Context, log *zap.Logger, repo group.Repository, n int) []group.Group {
	out := make([]group.Group, 0, n)
	for i := 0; i < n; i++ {
		title := gofakeit.HipsterWord() + " " + gofakeit.Noun()
		g, err := repo.Ensure(ctx, group.Group{
			Title:       strings.ToUpper(title[:1]) + title[1:],
			Slug:        strings.ReplaceAll(strings.ToLower(title), " ", "-"),
			Description: gofakeit.Sentence(12),
		})
		if err != nil {
			log.Warn("group", zap.String("title", title), zap.Error(err))
			continue
		}
		out = append(out, *g)
	}
	return out
}
