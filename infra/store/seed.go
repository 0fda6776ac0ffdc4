package store

import (
	"time"

	"github.com/kopong25/freightquick/core/model"
)

// City returns a named location with coordinates when the city is known to
// the seed table, or a name-only location otherwise.
func City(name string) model.Location {
	if c, ok := cities[name]; ok {
		return model.Location{Name: name, Lat: c.lat, Lon: c.lon}
	}
	return model.Location{Name: name}
}

var cities = map[string]struct{ lat, lon float64 }{
	"Chicago, IL":        {41.8781, -87.6298},
	"Indianapolis, IN":   {39.7684, -86.1581},
	"Detroit, MI":        {42.3314, -83.0458},
	"Dallas, TX":         {32.7767, -96.7970},
	"Memphis, TN":        {35.1495, -90.0490},
	"Nashville, TN":      {36.1627, -86.7816},
	"Louisville, KY":     {38.2527, -85.7585},
	"Atlanta, GA":        {33.7490, -84.3880},
	"Charlotte, NC":      {35.2271, -80.8431},
	"Phoenix, AZ":        {33.4484, -112.0740},
	"Tucson, AZ":         {32.2226, -110.9747},
	"Las Vegas, NV":      {36.1699, -115.1398},
	"Seattle, WA":        {47.6062, -122.3321},
	"Portland, OR":       {45.5152, -122.6784},
	"Sacramento, CA":     {38.5816, -121.4944},
	"Denver, CO":         {39.7392, -104.9903},
	"Salt Lake City, UT": {40.7608, -111.8910},
	"Kansas City, MO":    {39.0997, -94.5786},
	"Houston, TX":        {29.7604, -95.3698},
	"San Antonio, TX":    {29.4241, -98.4936},
	"New Orleans, LA":    {29.9511, -90.0715},
	"Miami, FL":          {25.7617, -80.1918},
	"Orlando, FL":        {28.5383, -81.3792},
	"Los Angeles, CA":    {34.0522, -118.2437},
	"San Diego, CA":      {32.7157, -117.1611},
	"Boston, MA":         {42.3601, -71.0589},
	"Providence, RI":     {41.8240, -71.4128},
	"New York, NY":       {40.7128, -74.0060},
}

// SeedFleet loads the development fleet into the store: the drivers and
// open loads a fresh environment starts with.
func SeedFleet(m *Memory, now time.Time) {
	drivers := []model.Driver{
		{ID: "IGRAU", Username: "IGRAU", Name: "Ivan Grau", Equipment: model.EquipmentOTR, HomeBase: City("Chicago, IL"), CurrentLocation: City("Indianapolis, IN"), DutyHoursLeft: 10.5, OnTimeRate: 0.97, LoadsCompleted: 142},
		{ID: "LSANCHEZ", Username: "LSANCHEZ", Name: "Luis Sanchez", Equipment: model.EquipmentOTR, HomeBase: City("Dallas, TX"), CurrentLocation: City("Memphis, TN"), DutyHoursLeft: 8, OnTimeRate: 0.95, LoadsCompleted: 218},
		{ID: "JTORO", Username: "JTORO", Name: "James Toro", Equipment: model.EquipmentSolo, HomeBase: City("Atlanta, GA"), CurrentLocation: City("Atlanta, GA"), DutyHoursLeft: 11, OnTimeRate: 0.93, LoadsCompleted: 89},
		{ID: "MWILSON", Username: "MWILSON", Name: "Mike Wilson", Equipment: model.EquipmentRegional, HomeBase: City("Phoenix, AZ"), CurrentLocation: City("Tucson, AZ"), DutyHoursLeft: 9.5, OnTimeRate: 0.98, LoadsCompleted: 301},
		{ID: "SLEONARDS", Username: "SLEONARDS", Name: "Sarah Leonards", Equipment: model.EquipmentOTR, HomeBase: City("Seattle, WA"), CurrentLocation: City("Portland, OR"), DutyHoursLeft: 7, OnTimeRate: 0.94, LoadsCompleted: 176},
		{ID: "JRINALDI", Username: "JRINALDI", Name: "Joe Rinaldi", Equipment: model.EquipmentOTR, HomeBase: City("Denver, CO"), CurrentLocation: City("Salt Lake City, UT"), DutyHoursLeft: 10, OnTimeRate: 0.96, LoadsCompleted: 203},
		{ID: "JABIAS", Username: "JABIAS", Name: "Juan Abias", Equipment: model.EquipmentOTR, HomeBase: City("Houston, TX"), CurrentLocation: City("New Orleans, LA"), DutyHoursLeft: 11, OnTimeRate: 0.91, LoadsCompleted: 155},
		{ID: "CSMITH", Username: "CSMITH", Name: "Carol Smith", Equipment: model.EquipmentSolo, HomeBase: City("Miami, FL"), CurrentLocation: City("Miami, FL"), DutyHoursLeft: 0, OnTimeRate: 0.99, LoadsCompleted: 67, OffDuty: true},
		{ID: "DVARGAS", Username: "DVARGAS", Name: "David Vargas", Equipment: model.EquipmentRegional, HomeBase: City("Los Angeles, CA"), CurrentLocation: City("San Diego, CA"), DutyHoursLeft: 9, OnTimeRate: 0.97, LoadsCompleted: 412},
		{ID: "MRUSSO", Username: "MRUSSO", Name: "Marco Russo", Equipment: model.EquipmentRegional, HomeBase: City("Boston, MA"), CurrentLocation: City("Providence, RI"), DutyHoursLeft: 8.5, OnTimeRate: 0.92, LoadsCompleted: 198},
		{ID: "ISANCHEZ", Username: "ISANCHEZ", Name: "Isabella Sanchez", Equipment: model.EquipmentSolo, HomeBase: City("Nashville, TN"), CurrentLocation: City("Louisville, KY"), DutyHoursLeft: 10, OnTimeRate: 0.95, LoadsCompleted: 88},
	}
	loads := []model.Load{
		{ID: "010192-206", LoadNumber: "010192-206", Origin: City("Chicago, IL"), Destination: City("Detroit, MI"), Equipment: model.EquipmentOTR, WeightLbs: 42000, Miles: 283, Rate: 1850, Commodity: "Auto Parts", PostedAt: now.Add(-2 * time.Hour)},
		{ID: "010202-476", LoadNumber: "010202-476", Origin: City("Dallas, TX"), Destination: City("Nashville, TN"), Equipment: model.EquipmentOTR, WeightLbs: 38000, Miles: 678, Rate: 2200, Commodity: "Consumer Goods", PostedAt: now.Add(-5 * time.Hour)},
		{ID: "010202-477", LoadNumber: "010202-477", Origin: City("Atlanta, GA"), Destination: City("Charlotte, NC"), Equipment: model.EquipmentOTR, WeightLbs: 25000, Miles: 244, Rate: 1100, Commodity: "Electronics", PostedAt: now.Add(-8 * time.Hour)},
		{ID: "010202-478", LoadNumber: "010202-478", Origin: City("Phoenix, AZ"), Destination: City("Las Vegas, NV"), Equipment: model.EquipmentSolo, WeightLbs: 18000, Miles: 297, Rate: 950, Commodity: "Food & Bev", PostedAt: now.Add(-12 * time.Hour)},
		{ID: "010202-479", LoadNumber: "010202-479", Origin: City("Denver, CO"), Destination: City("Kansas City, MO"), Equipment: model.EquipmentRegional, WeightLbs: 44000, Miles: 601, Rate: 2400, Commodity: "Industrial", PostedAt: now.Add(-20 * time.Hour)},
		{ID: "010202-480", LoadNumber: "010202-480", Origin: City("Houston, TX"), Destination: City("San Antonio, TX"), Equipment: model.EquipmentRegional, WeightLbs: 21000, Miles: 197, Rate: 780, Commodity: "Chemicals", PostedAt: now.Add(-30 * time.Hour)},
		{ID: "010207-481", LoadNumber: "010207-481", Origin: City("Seattle, WA"), Destination: City("Sacramento, CA"), Equipment: model.EquipmentOTR, WeightLbs: 36000, Miles: 750, Rate: 2800, Commodity: "Tech Equipment", PostedAt: now.Add(-1 * time.Hour)},
		{ID: "010202-321", LoadNumber: "010202-321", Origin: City("Miami, FL"), Destination: City("Orlando, FL"), Equipment: model.EquipmentOTR, WeightLbs: 28000, Miles: 235, Rate: 1050, Commodity: "Retail Goods", PostedAt: now.Add(-16 * time.Hour)},
	}
	for _, d := range drivers {
		m.PutDriver(d)
	}
	for _, l := range loads {
		m.PutLoad(l)
	}
}
