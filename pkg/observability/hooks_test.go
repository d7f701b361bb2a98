package observability

import (
	"context"
	"testing"
	"time"
)

func TestNoopHooksDoNotPanic(t *testing.T) {
	ctx := context.Background()

	c := NoopCatalogHooks{}
	c.OnAPIError(ctx, "package_show", "Not Found Error", "Not found")
	c.OnCacheFill(ctx, "organization_list", 1200)
	c.OnPage(ctx, "cabinet-office", 3, 100, nil)

	h := NoopHTTPHooks{}
	h.OnRequest(ctx, "GET", "data.gov.uk", "/api/3/action/package_list")
	h.OnResponse(ctx, "GET", "data.gov.uk", "/api/3/action/package_list", 200, time.Second)
	h.OnError(ctx, "GET", "data.gov.uk", "/api/3/action/package_list", nil)
}

func TestGlobalHooksRegistry(t *testing.T) {
	Reset()

	if _, ok := Catalog().(NoopCatalogHooks); !ok {
		t.Error("Catalog() should return NoopCatalogHooks by default")
	}
	if _, ok := HTTP().(NoopHTTPHooks); !ok {
		t.Error("HTTP() should return NoopHTTPHooks by default")
	}

	customCatalog := &testCatalogHooks{}
	SetCatalogHooks(customCatalog)
	if Catalog() != customCatalog {
		t.Error("SetCatalogHooks should set custom hooks")
	}

	customHTTP := &testHTTPHooks{}
	SetHTTPHooks(customHTTP)
	if HTTP() != customHTTP {
		t.Error("SetHTTPHooks should set custom hooks")
	}

	Reset()
	if _, ok := Catalog().(NoopCatalogHooks); !ok {
		t.Error("Reset() should restore NoopCatalogHooks")
	}
	if _, ok := HTTP().(NoopHTTPHooks); !ok {
		t.Error("Reset() should restore NoopHTTPHooks")
	}
}

func TestSetNilHooksIsIgnored(t *testing.T) {
	Reset()
	defer Reset()

	custom := &testCatalogHooks{}
	SetCatalogHooks(custom)
	SetCatalogHooks(nil)
	if Catalog() != custom {
		t.Error("SetCatalogHooks(nil) should keep the previous hooks")
	}
}

type testCatalogHooks struct {
	NoopCatalogHooks
	pages int
}

type testHTTPHooks struct {
	NoopHTTPHooks
	requests int
}
