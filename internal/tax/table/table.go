package table

import (
	"bytes"
	_ "embed"
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/salescloser/internal/config"
	"github.com/smallbiznis/salescloser/internal/tax/domain"
	"github.com/spf13/viper"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

//go:embed jurisdictions.yml
var defaultTable []byte

type document struct {
	Version       string  `mapstructure:"version"`
	Jurisdictions []entry `mapstructure:"jurisdictions"`
}

type entry struct {
	Code           string `mapstructure:"code"`
	Name           string `mapstructure:"name"`
	Rate           string `mapstructure:"rate"`
	FreightTaxable bool   `mapstructure:"freight_taxable"`
	LaborTaxable   bool   `mapstructure:"labor_taxable"`
	Notes          string `mapstructure:"notes"`
}

// Default parses the table shipped with the binary.
func Default() (*domain.Table, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	if err := v.ReadConfig(bytes.NewReader(defaultTable)); err != nil {
		return nil, fmt.Errorf("read embedded tax table: %w", err)
	}
	return decode(v)
}

// LoadFile parses a table from a YAML file with the same layout as the
// embedded one.
func LoadFile(path string) (*domain.Table, error) {
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read tax table %s: %w", path, err)
	}
	return decode(v)
}

func decode(v *viper.Viper) (*domain.Table, error) {
	var doc document
	if err := v.Unmarshal(&doc); err != nil {
		return nil, fmt.Errorf("decode tax table: %w", err)
	}

	rows := make([]domain.Jurisdiction, 0, len(doc.Jurisdictions))
	for _, e := range doc.Jurisdictions {
		rate, err := decimal.NewFromString(strings.TrimSpace(e.Rate))
		if err != nil {
			return nil, fmt.Errorf("jurisdiction %s: rate %q: %w", e.Code, e.Rate, domain.ErrInvalidTaxRate)
		}
		rows = append(rows, domain.Jurisdiction{
			Code:           e.Code,
			Name:           e.Name,
			CombinedRate:   rate,
			FreightTaxable: e.FreightTaxable,
			LaborTaxable:   e.LaborTaxable,
			Notes:          strings.TrimSpace(e.Notes),
		})
	}
	return domain.NewTable(doc.Version, rows)
}

// Holder keeps the table in effect. With an override file it follows edits
// to that file; a bad edit is logged and the previous table stays.
type Holder struct {
	current atomic.Pointer[domain.Table]
}

type Params struct {
	fx.In

	Cfg config.Config
	Log *zap.Logger
}

func NewHolder(p Params) (*Holder, error) {
	log := p.Log.Named("tax.table")
	path := strings.TrimSpace(p.Cfg.TaxTablePath)
	if path == "" {
		t, err := Default()
		if err != nil {
			return nil, err
		}
		log.Debug("using embedded tax table", zap.String("version", t.Version()), zap.Int("jurisdictions", t.Len()))
		return NewStaticHolder(t), nil
	}

	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read tax table %s: %w", path, err)
	}
	t, err := decode(v)
	if err != nil {
		return nil, err
	}

	holder := NewStaticHolder(t)
	log.Info("using tax table override",
		zap.String("path", path),
		zap.String("version", t.Version()),
		zap.Int("jurisdictions", t.Len()),
	)

	v.OnConfigChange(func(e fsnotify.Event) {
		updated, err := decode(v)
		if err != nil {
			log.Warn("tax table reload ignored", zap.String("path", e.Name), zap.Error(err))
			return
		}
		holder.current.Store(updated)
		log.Info("tax table reloaded", zap.String("path", e.Name), zap.String("version", updated.Version()))
	})
	v.WatchConfig()

	return holder, nil
}

func NewStaticHolder(t *domain.Table) *Holder {
	h := &Holder{}
	h.current.Store(t)
	return h
}

func (h *Holder) Get() *domain.Table {
	return h.current.Load()
}

var _ domain.TableSource = (*Holder)(nil)
