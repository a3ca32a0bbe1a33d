package gateway

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/parcelworks/siteassess/internal/model"
	"github.com/parcelworks/siteassess/internal/retry"
	"github.com/parcelworks/siteassess/pkg/baidu"
)

func newTestGateway(t *testing.T, handler http.HandlerFunc) (*Gateway, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	client := baidu.NewClient("test-ak", baidu.WithBaseURL(srv.URL))
	// No retries so failure-path tests see exactly one provider call.
	return New(client, model.DefaultFieldTable(), WithRetry(retry.Config{MaxAttempts: 1})), srv
}

func TestGeocode_CacheHitSkipsNetwork(t *testing.T) {
	var calls int32
	gw, _ := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		_, _ = w.Write([]byte(`{"status":0,"result":{"location":{"lng":116.404,"lat":39.915}}}`))
	})

	ctx := context.Background()
	c1, ok := gw.Geocode(ctx, "示例小区1")
	require.True(t, ok)
	c2, ok := gw.Geocode(ctx, "示例小区1")
	require.True(t, ok)

	assert.Equal(t, c1, c2)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestGeocode_FailureReturnsAbsent(t *testing.T) {
	gw, _ := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status":2,"msg":"参数无效"}`))
	})

	_, ok := gw.Geocode(context.Background(), "示例小区1")
	assert.False(t, ok)
}

func TestGeocode_FailureIsNotCached(t *testing.T) {
	var calls int32
	gw, _ := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			_, _ = w.Write([]byte(`{"status":2}`))
			return
		}
		_, _ = w.Write([]byte(`{"status":0,"result":{"location":{"lng":116.404,"lat":39.915}}}`))
	})

	ctx := context.Background()
	_, ok := gw.Geocode(ctx, "示例小区1")
	require.False(t, ok)

	coord, ok := gw.Geocode(ctx, "示例小区1")
	require.True(t, ok)
	assert.InDelta(t, 116.404, coord.Lng, 1e-9)
}

func TestGeocode_ConcurrentRequestsSingleCall(t *testing.T) {
	var calls int32
	gw, _ := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		_, _ = w.Write([]byte(`{"status":0,"result":{"location":{"lng":116.404,"lat":39.915}}}`))
	})

	ctx := context.Background()
	var wg sync.WaitGroup
	for n := 0; n < 8; n++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = gw.Geocode(ctx, "示例小区1")
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestGeocode_RetriesTransientFailure(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(`{"status":0,"result":{"location":{"lng":116.404,"lat":39.915}}}`))
	}))
	t.Cleanup(srv.Close)

	client := baidu.NewClient("test-ak", baidu.WithBaseURL(srv.URL))
	gw := New(client, model.DefaultFieldTable(), WithRetry(retry.Config{
		MaxAttempts:    2,
		InitialBackoff: time.Millisecond,
		JitterFraction: -1, // clamped to 0
	}))

	coord, ok := gw.Geocode(context.Background(), "示例小区1")
	require.True(t, ok)
	assert.InDelta(t, 116.404, coord.Lng, 1e-9)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestSearchPOI_SortedByReportedDistanceMissingLast(t *testing.T) {
	gw, _ := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status":0,"results":[
			{"name":"无距离","location":{"lat":39.92,"lng":116.41},"detail_info":{}},
			{"name":"远","location":{"lat":39.93,"lng":116.42},"detail_info":{"distance":800}},
			{"name":"近","location":{"lat":39.916,"lng":116.405},"detail_info":{"distance":120}}
		]}`))
	})

	pois := gw.SearchPOI(context.Background(), "商场", model.Coordinate{Lng: 116.404, Lat: 39.915}, 1000)

	require.Len(t, pois, 3)
	assert.Equal(t, "近", pois[0].Name)
	assert.Equal(t, "远", pois[1].Name)
	assert.Equal(t, "无距离", pois[2].Name)
}

func TestSearchPOI_MalformedJSONYieldsEmpty(t *testing.T) {
	gw, _ := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{{{`))
	})

	pois := gw.SearchPOI(context.Background(), "商场", model.Coordinate{}, 1000)
	assert.Empty(t, pois)
}

func TestSearchPOI_CachesByCategoryCoordRadius(t *testing.T) {
	var calls int32
	gw, _ := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		_, _ = w.Write([]byte(`{"status":0,"results":[]}`))
	})

	ctx := context.Background()
	origin := model.Coordinate{Lng: 116.404, Lat: 39.915}

	gw.SearchPOI(ctx, "商场", origin, 1000)
	gw.SearchPOI(ctx, "商场", origin, 1000) // hit
	gw.SearchPOI(ctx, "商场", origin, 2000) // different radius
	gw.SearchPOI(ctx, "超市", origin, 1000) // different category

	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestFetchContext_FullContext(t *testing.T) {
	gw, _ := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/geocoding/v3":
			_, _ = w.Write([]byte(`{"status":0,"result":{"location":{"lng":116.404,"lat":39.915}}}`))
		case "/reverse_geocoding/v3":
			_, _ = w.Write([]byte(`{"status":0,"result":{"formatted_address":"北京市东城区某街道","addressComponent":{"district":"东城区"}}}`))
		case "/place/v2/search":
			_, _ = w.Write([]byte(`{"status":0,"results":[{"name":"XX商场","location":{"lat":39.917,"lng":116.406},"detail_info":{"distance":300}}]}`))
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	})

	fields := []model.FieldDescriptor{
		{OriginalIndex: 0, Name: model.FieldLocation, Enabled: true},
		{OriginalIndex: 1, Name: model.FieldMallDistance, Enabled: true, Radius: 1000},
		{OriginalIndex: 9, Name: model.FieldRailDistance, Enabled: false, Radius: 1000},
	}

	cctx := gw.FetchContext(context.Background(), "示例小区1", fields)

	require.NotNil(t, cctx)
	assert.Equal(t, "北京市东城区某街道", cctx.FormattedAddress)
	assert.Equal(t, "东城区", cctx.District)
	require.Contains(t, cctx.FieldData, model.FieldMallDistance)
	assert.NotContains(t, cctx.FieldData, model.FieldRailDistance) // disabled
	assert.NotContains(t, cctx.FieldData, model.FieldLocation)     // no searches

	mall := cctx.FieldData[model.FieldMallDistance]["商场"]
	require.Len(t, mall, 1)
	assert.Equal(t, "XX商场", mall[0].Name)
}

func TestFetchContext_GeocodeFailureReturnsNil(t *testing.T) {
	gw, _ := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status":1}`))
	})

	cctx := gw.FetchContext(context.Background(), "不存在的地址", nil)
	assert.Nil(t, cctx)
}

func TestFetchContext_SearchFailureDegradesFieldOnly(t *testing.T) {
	gw, _ := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/geocoding/v3":
			_, _ = w.Write([]byte(`{"status":0,"result":{"location":{"lng":116.404,"lat":39.915}}}`))
		case "/reverse_geocoding/v3":
			_, _ = w.Write([]byte(`{"status":0,"result":{"formatted_address":"某街道","addressComponent":{"district":"某区"}}}`))
		case "/place/v2/search":
			if r.URL.Query().Get("query") == "商场" {
				w.WriteHeader(http.StatusBadGateway)
				return
			}
			_, _ = w.Write([]byte(`{"status":0,"results":[{"name":"某地铁站","location":{"lat":39.916,"lng":116.405},"detail_info":{"distance":200}}]}`))
		}
	})

	fields := []model.FieldDescriptor{
		{OriginalIndex: 1, Name: model.FieldMallDistance, Enabled: true, Radius: 1000},
		{OriginalIndex: 9, Name: model.FieldRailDistance, Enabled: true, Radius: 1000},
	}

	cctx := gw.FetchContext(context.Background(), "示例小区1", fields)

	require.NotNil(t, cctx)
	assert.Empty(t, cctx.FieldData[model.FieldMallDistance]["商场"])
	assert.Len(t, cctx.FieldData[model.FieldRailDistance]["地铁站"], 1)
}
