// Package seed loads reference data into an empty deployment: companies, the
// CP_96 taxonomy, default policies and the bootstrap administrator. Every step
// matches existing rows by code or key, so running it twice changes nothing.
package seed

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"log/slog"

	"gopkg.in/yaml.v3"

	companymodels "changepoint/internal/company/models"
	policymodels "changepoint/internal/policy/models"
	taxonomymodels "changepoint/internal/taxonomy/models"
	id "changepoint/pkg/domain"
)

//go:embed seed.yaml
var defaultFile []byte

type File struct {
	Version   int       `yaml:"version"`
	Companies []Company `yaml:"companies"`
	Taxonomy  []Class   `yaml:"taxonomy"`
	Policies  []Policy  `yaml:"policies"`
}

type Company struct {
	Code string                    `yaml:"code"`
	Name string                    `yaml:"name"`
	Type companymodels.CompanyType `yaml:"type"`
}

type Class struct {
	Code        string     `yaml:"code"`
	Name        string     `yaml:"name"`
	Description string     `yaml:"description"`
	Categories  []Category `yaml:"categories"`
}

type Category struct {
	Code     string     `yaml:"code"`
	Name     string     `yaml:"name"`
	Items    []Item     `yaml:"items"`
	Children []Category `yaml:"children"`
}

type Item struct {
	Code string `yaml:"code"`
	Name string `yaml:"name"`
}

type Policy struct {
	Key       policymodels.Key       `yaml:"key"`
	ScopeType policymodels.ScopeType `yaml:"scopeType"`
	Value     map[string]any         `yaml:"value"`
}

// Default returns the seed file compiled into the binary.
func Default() (*File, error) {
	return Parse(defaultFile)
}

func Parse(raw []byte) (*File, error) {
	var f File
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("decode seed file: %w", err)
	}
	if f.Version != 1 {
		return nil, fmt.Errorf("unsupported seed file version: %d", f.Version)
	}
	return &f, nil
}

type CompanyService interface {
	List(ctx context.Context) ([]*companymodels.Company, error)
	Create(ctx context.Context, code, name string, typ companymodels.CompanyType) (*companymodels.Company, error)
}

type TaxonomyService interface {
	ListClasses(ctx context.Context) ([]*taxonomymodels.Class, error)
	ListCategories(ctx context.Context, classID *id.TaxonomyClassID) ([]*taxonomymodels.Category, error)
	ListItems(ctx context.Context, categoryID *id.TaxonomyCategoryID) ([]*taxonomymodels.Item, error)
	CreateClass(ctx context.Context, code, name, description string) (*taxonomymodels.Class, error)
	CreateCategory(ctx context.Context, classID id.TaxonomyClassID, parentID *id.TaxonomyCategoryID, code, name string) (*taxonomymodels.Category, error)
	CreateItem(ctx context.Context, categoryID id.TaxonomyCategoryID, code, name string) (*taxonomymodels.Item, error)
}

type PolicyService interface {
	List(ctx context.Context) ([]*policymodels.Setting, error)
	Create(ctx context.Context, d policymodels.Draft) (*policymodels.Setting, error)
}

type AdminBootstrapper interface {
	EnsureAdmin(ctx context.Context, email, password, name string) (bool, error)
}

// Admin is the bootstrap account. An empty Email skips it.
type Admin struct {
	Email    string
	Password string
	Name     string
}

type Seeder struct {
	companies CompanyService
	taxonomy  TaxonomyService
	policies  PolicyService
	admins    AdminBootstrapper
	logger    *slog.Logger
}

func New(companies CompanyService, taxonomy TaxonomyService, policies PolicyService, admins AdminBootstrapper, logger *slog.Logger) *Seeder {
	return &Seeder{companies: companies, taxonomy: taxonomy, policies: policies, admins: admins, logger: logger}
}

// Result counts the rows created by one Apply.
type Result struct {
	Companies  int
	Classes    int
	Categories int
	Items      int
	Policies   int
	Admin      bool
}

func (s *Seeder) Apply(ctx context.Context, f *File, admin Admin) (Result, error) {
	var res Result
	if err := s.seedCompanies(ctx, f.Companies, &res); err != nil {
		return res, err
	}
	if err := s.seedTaxonomy(ctx, f.Taxonomy, &res); err != nil {
		return res, err
	}
	if err := s.seedPolicies(ctx, f.Policies, &res); err != nil {
		return res, err
	}
	if admin.Email != "" {
		created, err := s.admins.EnsureAdmin(ctx, admin.Email, admin.Password, admin.Name)
		if err != nil {
			return res, fmt.Errorf("ensure admin: %w", err)
		}
		res.Admin = created
	}
	s.logger.InfoContext(ctx, "seed applied",
		"companies", res.Companies,
		"classes", res.Classes,
		"categories", res.Categories,
		"items", res.Items,
		"policies", res.Policies,
		"admin_created", res.Admin,
	)
	return res, nil
}

func (s *Seeder) seedCompanies(ctx context.Context, companies []Company, res *Result) error {
	existing, err := s.companies.List(ctx)
	if err != nil {
		return fmt.Errorf("list companies: %w", err)
	}
	known := make(map[string]bool, len(existing))
	for _, c := range existing {
		known[c.Code] = true
	}
	for _, c := range companies {
		if known[c.Code] {
			continue
		}
		if _, err := s.companies.Create(ctx, c.Code, c.Name, c.Type); err != nil {
			return fmt.Errorf("create company %s: %w", c.Code, err)
		}
		res.Companies++
	}
	return nil
}

func (s *Seeder) seedTaxonomy(ctx context.Context, classes []Class, res *Result) error {
	existing, err := s.taxonomy.ListClasses(ctx)
	if err != nil {
		return fmt.Errorf("list classes: %w", err)
	}
	byCode := make(map[string]*taxonomymodels.Class, len(existing))
	for _, c := range existing {
		byCode[c.Code] = c
	}
	for _, c := range classes {
		class, ok := byCode[c.Code]
		if !ok {
			if class, err = s.taxonomy.CreateClass(ctx, c.Code, c.Name, c.Description); err != nil {
				return fmt.Errorf("create class %s: %w", c.Code, err)
			}
			res.Classes++
		}
		categories, err := s.taxonomy.ListCategories(ctx, &class.ID)
		if err != nil {
			return fmt.Errorf("list categories of %s: %w", c.Code, err)
		}
		index := make(map[string]*taxonomymodels.Category, len(categories))
		for _, cat := range categories {
			index[cat.Code] = cat
		}
		if err := s.seedCategories(ctx, class.ID, nil, c.Categories, index, res); err != nil {
			return err
		}
	}
	return nil
}

// seedCategories walks the tree depth first so parents exist before children.
// Category codes are matched within the class.
func (s *Seeder) seedCategories(ctx context.Context, classID id.TaxonomyClassID, parentID *id.TaxonomyCategoryID,
	categories []Category, index map[string]*taxonomymodels.Category, res *Result) error {
	for _, c := range categories {
		cat, ok := index[c.Code]
		if !ok {
			var err error
			if cat, err = s.taxonomy.CreateCategory(ctx, classID, parentID, c.Code, c.Name); err != nil {
				return fmt.Errorf("create category %s: %w", c.Code, err)
			}
			index[c.Code] = cat
			res.Categories++
		}
		if err := s.seedItems(ctx, cat.ID, c.Items, res); err != nil {
			return err
		}
		if err := s.seedCategories(ctx, classID, &cat.ID, c.Children, index, res); err != nil {
			return err
		}
	}
	return nil
}

func (s *Seeder) seedItems(ctx context.Context, categoryID id.TaxonomyCategoryID, items []Item, res *Result) error {
	if len(items) == 0 {
		return nil
	}
	existing, err := s.taxonomy.ListItems(ctx, &categoryID)
	if err != nil {
		return fmt.Errorf("list items: %w", err)
	}
	known := make(map[string]bool, len(existing))
	for _, i := range existing {
		known[i.Code] = true
	}
	for _, i := range items {
		if known[i.Code] {
			continue
		}
		if _, err := s.taxonomy.CreateItem(ctx, categoryID, i.Code, i.Name); err != nil {
			return fmt.Errorf("create item %s: %w", i.Code, err)
		}
		res.Items++
	}
	return nil
}

// seedPolicies only adds a default when no live setting exists for the key
// and scope type, so an operator's edits are never overwritten.
func (s *Seeder) seedPolicies(ctx context.Context, policies []Policy, res *Result) error {
	existing, err := s.policies.List(ctx)
	if err != nil {
		return fmt.Errorf("list policies: %w", err)
	}
	type slot struct {
		key   policymodels.Key
		scope policymodels.ScopeType
	}
	taken := make(map[slot]bool, len(existing))
	for _, p := range existing {
		taken[slot{p.Key, p.ScopeType}] = true
	}
	for _, p := range policies {
		if taken[slot{p.Key, p.ScopeType}] {
			continue
		}
		value, err := json.Marshal(p.Value)
		if err != nil {
			return fmt.Errorf("encode policy %s: %w", p.Key, err)
		}
		if _, err := s.policies.Create(ctx, policymodels.Draft{
			Key:       p.Key,
			Value:     value,
			ScopeType: p.ScopeType,
		}); err != nil {
			return fmt.Errorf("create policy %s: %w", p.Key, err)
		}
		res.Policies++
	}
	return nil
}
