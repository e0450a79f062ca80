package geo

import (
	"context"
	"net"
	"os"
	"path/filepath"
	"testing"

	"github.com/maxmind/mmdbwriter"
	"github.com/maxmind/mmdbwriter/mmdbtype"
	"github.com/oschwald/geoip2-golang"
	"github.com/stretchr/testify/require"
)

func TestMMDBClient_Lookup(t *testing.T) {
	t.Parallel()

	path := writeCityMMDB(t, "1.1.1.0/24", mmdbtype.Map{
		"country": mmdbtype.Map{
			"iso_code": mmdbtype.String("CA"),
			"names":    mmdbtype.Map{"en": mmdbtype.String("Canada")},
		},
		"subdivisions": mmdbtype.Slice{
			mmdbtype.Map{"names": mmdbtype.Map{"en": mmdbtype.String("Ontario")}},
		},
		"city": mmdbtype.Map{
			"names": mmdbtype.Map{"en": mmdbtype.String("Ottawa")},
		},
		"postal": mmdbtype.Map{"code": mmdbtype.String("K1A 0A6")},
		"location": mmdbtype.Map{
			"latitude":  mmdbtype.Float64(45.4215),
			"longitude": mmdbtype.Float64(-75.6972),
		},
	})

	c, err := OpenMMDB(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })

	loc, err := c.Lookup(context.Background(), "1.1.1.1")
	require.NoError(t, err)
	require.Equal(t, "Canada", loc.CountryName)
	require.Equal(t, "Ontario", loc.State)
	require.Equal(t, "Ottawa", loc.City)
	require.Equal(t, "K1A 0A6", loc.Postal)
	require.InDelta(t, 45.4215, loc.Latitude, 1e-9)
	require.InDelta(t, -75.6972, loc.Longitude, 1e-9)

	// 未收录的地址返回空位置
	loc, err = c.Lookup(context.Background(), "8.8.8.8")
	require.NoError(t, err)
	require.Equal(t, Location{}, loc)
}

func TestMMDBClient_Lookup_InvalidAddr(t *testing.T) {
	t.Parallel()

	path := writeCityMMDB(t, "1.1.1.0/24", mmdbtype.Map{})
	c, err := OpenMMDB(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })

	_, err = c.Lookup(context.Background(), "not-an-ip")
	require.ErrorIs(t, err, ErrInvalidAddr)
}

func TestNewMMDBClient_NilReader(t *testing.T) {
	t.Parallel()

	var db *geoip2.Reader
	_, err := NewMMDBClient(db)
	require.Error(t, err)
}

func writeCityMMDB(t *testing.T, cidr string, rec mmdbtype.Map) string {
	t.Helper()
	w, err := mmdbwriter.New(mmdbwriter.Options{DatabaseType: "GeoLite2-City", RecordSize: 24})
	require.NoError(t, err)

	_, network, err := net.ParseCIDR(cidr)
	require.NoError(t, err)
	require.NoError(t, w.Insert(network, rec))

	path := filepath.Join(t.TempDir(), "city.mmdb")
	f, err := os.Create(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = f.Close() })

	_, err = w.WriteTo(f)
	require.NoError(t, err)
	require.NoError(t, f.Close())
	return path
}
