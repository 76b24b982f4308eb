// Package seed loads a demo household from a YAML fixture.
package seed

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/dukerupert/chorestore/internal/chore"
	"github.com/dukerupert/chorestore/internal/household"
	"github.com/dukerupert/chorestore/internal/model"
	"github.com/dukerupert/chorestore/internal/reward"
)

// File is the fixture format.
type File struct {
	Parent    Parent     `yaml:"parent"`
	Household string     `yaml:"household"`
	Children  []Child    `yaml:"children"`
	Templates []Template `yaml:"templates"`
	Rewards   []Reward   `yaml:"rewards"`
}

type Parent struct {
	Email    string `yaml:"email"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
}

type Child struct {
	Name   string  `yaml:"name"`
	PIN    string  `yaml:"pin"`
	Avatar *string `yaml:"avatar,omitempty"`
}

type Template struct {
	Title       string  `yaml:"title"`
	Description *string `yaml:"description,omitempty"`
	Points      int     `yaml:"points"`
	Recurrence  string  `yaml:"recurrence,omitempty"`
}

type Reward struct {
	Name        string  `yaml:"name"`
	Description *string `yaml:"description,omitempty"`
	PointCost   int     `yaml:"point_cost"`
}

// Result reports what Apply created.
type Result struct {
	HouseholdID string
	InviteCode  string
	Children    int
	Templates   int
	Rewards     int
	Instances   int
}

// LoadFile reads and validates a fixture from disk.
func LoadFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}
	return Load(bytes.NewReader(data))
}

// Load decodes a fixture, rejecting unknown fields.
func Load(r io.Reader) (*File, error) {
	var f File
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("parse seed file: %w", err)
	}
	if err := f.validate(); err != nil {
		return nil, err
	}
	return &f, nil
}

func (f *File) validate() error {
	if f.Parent.Email == "" || f.Parent.Password == "" {
		return errors.New("seed: parent email and password are required")
	}
	if f.Household == "" {
		return errors.New("seed: household name is required")
	}
	for i, t := range f.Templates {
		if t.Recurrence != "" && !model.Recurrence(t.Recurrence).Valid() {
			return fmt.Errorf("seed: templates[%d]: unknown recurrence %q", i, t.Recurrence)
		}
	}
	return nil
}

// Apply creates the parent, household, children, templates and rewards
// through the domain services, then generates today's instances.
func Apply(ctx context.Context, f *File, households *household.Service, chores *chore.Service, rewards *reward.Service) (*Result, error) {
	name := f.Parent.Name
	if name == "" {
		name = f.Parent.Email
	}
	sess, err := households.Register(ctx, f.Parent.Email, f.Parent.Password, name)
	if err != nil {
		return nil, fmt.Errorf("seed parent: %w", err)
	}
	h, err := households.Create(ctx, sess.User.ID, f.Household)
	if err != nil {
		return nil, fmt.Errorf("seed household: %w", err)
	}
	res := &Result{HouseholdID: h.ID, InviteCode: h.InviteCode}

	for _, c := range f.Children {
		if _, err := households.AddChild(ctx, h.ID, c.Name, c.Avatar, c.PIN); err != nil {
			return nil, fmt.Errorf("seed child %q: %w", c.Name, err)
		}
		res.Children++
	}
	for _, t := range f.Templates {
		rec := model.RecurrenceNone
		if t.Recurrence != "" {
			rec = model.Recurrence(t.Recurrence)
		}
		if _, err := chores.CreateTemplate(ctx, h.ID, chore.TemplateInput{
			Title:       t.Title,
			Description: t.Description,
			Points:      t.Points,
			Recurrence:  rec,
		}); err != nil {
			return nil, fmt.Errorf("seed template %q: %w", t.Title, err)
		}
		res.Templates++
	}
	for _, r := range f.Rewards {
		if _, err := rewards.Create(ctx, h.ID, reward.Input{
			Name:        r.Name,
			Description: r.Description,
			PointCost:   r.PointCost,
		}); err != nil {
			return nil, fmt.Errorf("seed reward %q: %w", r.Name, err)
		}
		res.Rewards++
	}

	n, err := chores.Generate(ctx, h.ID, nil)
	if err != nil {
		return nil, fmt.Errorf("seed instances: %w", err)
	}
	res.Instances = n
	return res, nil
}
