// Package seed loads the built-in global price catalog on startup.
package seed

import (
	"github.com/bwmarrin/snowflake"
	"github.com/mesterwork/mesterwork/internal/pricelist/domain"
	"gorm.io/gorm"
)

type catalogEntry struct {
	Task         string
	Category     string
	Technology   string
	Unit         string
	LaborCost    float64
	MaterialCost float64
}

// defaultCatalog holds the baseline construction tasks every tenant can
// draw prices from until they define their own.
var defaultCatalog = []catalogEntry{
	{"Falazás kisméretű téglából", "Falazás", "Hagyományos", "m2", 12000, 9500},
	{"Falazás Porotherm 30 N+F", "Falazás", "Porotherm", "m2", 9500, 11000},
	{"Válaszfal építés Porotherm 10 N+F", "Falazás", "Porotherm", "m2", 7500, 6500},
	{"Beltéri vakolás kézi felhordással", "Vakolás", "Kézi", "m2", 3800, 1800},
	{"Beltéri vakolás gépi felhordással", "Vakolás", "Gépi", "m2", 2900, 2100},
	{"Homlokzati vakolás", "Vakolás", "Kézi", "m2", 4500, 2500},
	{"Glettelés két rétegben", "Felületképzés", "Kézi", "m2", 2200, 900},
	{"Beltéri festés két rétegben", "Festés", "Diszperziós", "m2", 1600, 700},
	{"Homlokzatfestés", "Festés", "Szilikon", "m2", 2400, 1500},
	{"Hidegburkolás 60x60 greslap", "Burkolás", "Gres", "m2", 9000, 7500},
	{"Melegburkolás laminált padló", "Burkolás", "Laminált", "m2", 2800, 5500},
	{"Aljzatbetonozás 8 cm", "Betonozás", "Helyszíni", "m2", 3500, 4200},
	{"Esztrich készítés", "Betonozás", "Esztrich", "m2", 2600, 2800},
	{"Zsaluzás födémhez", "Betonozás", "Zsaluzat", "m2", 4800, 1200},
	{"Vasbeton koszorú készítés", "Betonozás", "Monolit", "fm", 6500, 4800},
	{"Gipszkarton válaszfal építés", "Szárazépítés", "Gipszkarton", "m2", 5500, 4500},
	{"Gipszkarton álmennyezet", "Szárazépítés", "Gipszkarton", "m2", 6200, 5200},
	{"Homlokzati hőszigetelés 15 cm EPS", "Szigetelés", "EPS", "m2", 6500, 7800},
	{"Födém hőszigetelés ásványgyapottal", "Szigetelés", "Ásványgyapot", "m2", 2800, 5600},
	{"Talajnedvesség elleni szigetelés", "Szigetelés", "Bitumenes lemez", "m2", 3200, 3800},
	{"Villanyszerelés pontonként", "Gépészet", "Elektromos", "db", 8500, 4500},
	{"Vízvezeték kiépítés pontonként", "Gépészet", "Víz", "db", 18000, 12000},
	{"Fűtéscső szerelés", "Gépészet", "Fűtés", "fm", 3500, 2800},
	{"Cseréplécezés és fóliázás", "Tetőfedés", "Hagyományos", "m2", 2400, 1900},
	{"Tetőfedés betoncseréppel", "Tetőfedés", "Betoncserép", "m2", 4200, 5800},
	{"Bontás kézi erővel", "Bontás", "Kézi", "m3", 15000, 0},
	{"Törmelék elszállítás", "Bontás", "Konténeres", "m3", 0, 9500},
}

// EnsureGlobalPriceList inserts the default catalog rows that are not
// already present. Existing rows are left untouched so operator edits
// survive restarts.
func EnsureGlobalPriceList(conn *gorm.DB) error {
	node, err := snowflake.NewNode(0)
	if err != nil {
		return err
	}

	for _, entry := range defaultCatalog {
		var count int64
		err := conn.Model(&domain.PriceList{}).
			Where("tenant_email = ? AND task = ?", "", entry.Task).
			Count(&count).Error
		if err != nil {
			return err
		}
		if count > 0 {
			continue
		}

		category, technology, unit := entry.Category, entry.Technology, entry.Unit
		row := domain.PriceList{
			ID:           node.Generate(),
			TenantEmail:  "",
			Task:         entry.Task,
			Category:     &category,
			Technology:   &technology,
			Unit:         &unit,
			LaborCost:    entry.LaborCost,
			MaterialCost: entry.MaterialCost,
		}
		if err := conn.Create(&row).Error; err != nil {
			return err
		}
	}
	return nil
}
