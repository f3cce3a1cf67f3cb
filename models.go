package main

import (
	"encoding/json"
	"strings"
	"time"
)

const (
	roleAdmin     = "ADMIN"
	statusPending = "PENDING"
)

// Session is the locally persisted record of a platform login: the bearer
// token issued by the platform API plus the role it was issued for. Token
// validity is only known to the platform; a 401/403 on a later call is the
// invalidation signal.
type Session struct {
	ID        string
	APIToken  string
	Role      string
	ExpiresAt time.Time
}

func (s *Session) IsAdmin() bool {
	return strings.EqualFold(s.Role, roleAdmin)
}

type User struct {
	ID         string
	Name       string
	Email      string
	IsApproved bool
}

type Post struct {
	ID       string
	AuthorID string
	Title    string
	Content  string
	MediaURL string
	Status   string
}

// The platform API is inconsistent about identifier keys ("id" in some
// responses, Mongo-style "_id" in others). Both types normalize at the
// decode boundary so the rest of the console only ever sees ID.

func (u *User) UnmarshalJSON(data []byte) error {
	var raw struct {
		ID         string `json:"id"`
		MongoID    string `json:"_id"`
		Name       string `json:"name"`
		Email      string `json:"email"`
		IsApproved bool   `json:"isApproved"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	u.ID = raw.ID
	if u.ID == "" {
		u.ID = raw.MongoID
	}
	u.Name = raw.Name
	u.Email = raw.Email
	u.IsApproved = raw.IsApproved
	return nil
}

func (p *Post) UnmarshalJSON(data []byte) error {
	var raw struct {
		ID       string `json:"id"`
		MongoID  string `json:"_id"`
		AuthorID string `json:"authorId"`
		Title    string `json:"title"`
		Content  string `json:"content"`
		MediaURL string `json:"mediaUrl"`
		Status   string `json:"status"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	p.ID = raw.ID
	if p.ID == "" {
		p.ID = raw.MongoID
	}
	p.AuthorID = raw.AuthorID
	p.Title = raw.Title
	p.Content = raw.Content
	p.MediaURL = raw.MediaURL
	p.Status = raw.Status
	return nil
}

// Derived views, computed per render and never stored.

func pendingUsers(users []User) []User {
	var pending []User
	for _, u := range users {
		if !u.IsApproved {
			pending = append(pending, u)
		}
	}
	return pending
}

func activeUsers(users []User) []User {
	var active []User
	for _, u := range users {
		if u.IsApproved {
			active = append(active, u)
		}
	}
	return active
}

func pendingPosts(posts []Post) []Post {
	var pending []Post
	for _, p := range posts {
		if p.Status == statusPending {
			pending = append(pending, p)
		}
	}
	return pending
}

func postsByAuthor(posts []Post, userID string) []Post {
	var authored []Post
	for _, p := range posts {
		if p.AuthorID == userID {
			authored = append(authored, p)
		}
	}
	return authored
}

func findUser(users []User, id string) *User {
	for i := range users {
		if users[i].ID == id {
			return &users[i]
		}
	}
	return nil
}
