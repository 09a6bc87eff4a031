package application

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/example/wedding-portal/internal/logging"
)

func newContentServiceForTest(t *testing.T, repos *storeRepos) (*ContentService, *Store) {
	t.Helper()
	store := newLoadedStore(t, repos)
	return NewContentServiceWithLogger(store, logging.Discard()), store
}

func TestContentService_RequiresAdministrator(t *testing.T) {
	svc, _ := newContentServiceForTest(t, newStoreRepos())
	guest := Principal{AccessCode: "AAAAA"}
	ctx := context.Background()

	checks := map[string]func() error{
		"gallery": func() error {
			_, err := svc.AddGalleryItem(ctx, guest, GalleryInput{ImageURL: "https://example.com/a.jpg"})
			return err
		},
		"menu": func() error {
			_, err := svc.AddMenuItem(ctx, guest, MenuFood, MenuItemInput{Name: "Rice", Category: "main"})
			return err
		},
		"remove": func() error { return svc.RemoveRegistryItem(ctx, guest, "x") },
		"remove at": func() error {
			_, err := svc.RemoveAt(ctx, guest, CollectionGallery, 0)
			return err
		},
		"payment": func() error {
			_, err := svc.UpdatePaymentDetails(ctx, guest, PaymentDetailsInput{BankName: "GTB"})
			return err
		},
		"reload": func() error { return svc.Reload(ctx, guest) },
	}
	for name, call := range checks {
		t.Run(name, func(t *testing.T) {
			if err := call(); !errors.Is(err, ErrUnauthorized) {
				t.Fatalf("expected ErrUnauthorized, got %v", err)
			}
		})
	}
}

func TestContentService_Gallery(t *testing.T) {
	repos := newStoreRepos()
	svc, _ := newContentServiceForTest(t, repos)
	ctx := context.Background()

	item, err := svc.AddGalleryItem(ctx, adminPrincipal, GalleryInput{Title: "First dance", ImageURL: "https://example.com/dance.mp4", Type: "VIDEO"})
	if err != nil {
		t.Fatalf("AddGalleryItem returned error: %v", err)
	}
	if item.ID == "" || item.Type != "video" {
		t.Fatalf("unexpected item %+v", item)
	}

	_, err = svc.AddGalleryItem(ctx, adminPrincipal, GalleryInput{ImageURL: "nope", Type: "audio"})
	var vErr *ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	for _, field := range []string{"image_url", "type"} {
		if _, ok := vErr.FieldErrors[field]; !ok {
			t.Fatalf("expected %s field error, got %v", field, vErr.FieldErrors)
		}
	}

	items, _ := svc.ListGallery(ctx, Principal{AccessCode: "AAAAA"})
	if len(items) != 1 {
		t.Fatalf("expected one gallery item, got %+v", items)
	}
	if err := svc.RemoveGalleryItem(ctx, adminPrincipal, item.ID); err != nil {
		t.Fatalf("RemoveGalleryItem returned error: %v", err)
	}
	if err := svc.RemoveGalleryItem(ctx, adminPrincipal, item.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound on second removal, got %v", err)
	}
}

func TestContentService_Menus(t *testing.T) {
	svc, _ := newContentServiceForTest(t, newStoreRepos())
	ctx := context.Background()

	if _, err := svc.AddMenuItem(ctx, adminPrincipal, MenuDrink, MenuItemInput{Name: "Chapman", Category: "Non-Alcoholic"}); err != nil {
		t.Fatalf("AddMenuItem returned error: %v", err)
	}
	_, err := svc.AddMenuItem(ctx, adminPrincipal, MenuFood, MenuItemInput{Name: "Chapman", Category: "alcoholic"})
	var vErr *ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("expected ValidationError for a drink category on the food menu, got %v", err)
	}
	if _, err := svc.ListMenu(ctx, Principal{}, MenuKind("snacks")); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unknown menu, got %v", err)
	}
	drinks, _ := svc.ListMenu(ctx, Principal{}, MenuDrink)
	if len(drinks) != 1 || drinks[0].Category != "non-alcoholic" {
		t.Fatalf("unexpected drinks %+v", drinks)
	}
}

func TestContentService_AsoebiAndOrderLink(t *testing.T) {
	svc, _ := newContentServiceForTest(t, newStoreRepos())
	ctx := context.Background()

	item, err := svc.AddAsoebiItem(ctx, adminPrincipal, AsoebiInput{Title: "Gold Lace", Price: 25000, Gender: "Female", Currency: "ngn"})
	if err != nil {
		t.Fatalf("AddAsoebiItem returned error: %v", err)
	}
	if item.Currency != "NGN" || item.Gender != "female" {
		t.Fatalf("expected normalised item, got %+v", item)
	}

	_, err = svc.AddAsoebiItem(ctx, adminPrincipal, AsoebiInput{Title: "Cap", Price: 0, Gender: "kids", Currency: "??"})
	var vErr *ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	for _, field := range []string{"price", "gender", "currency"} {
		if _, ok := vErr.FieldErrors[field]; !ok {
			t.Fatalf("expected %s field error, got %v", field, vErr.FieldErrors)
		}
	}

	if _, err := svc.AsoebiOrderLink(ctx, Principal{AccessCode: "AAAAA"}, item.ID); err == nil {
		t.Fatal("expected order link to need a WhatsApp number")
	}
	if _, err := svc.UpdatePaymentDetails(ctx, adminPrincipal, PaymentDetailsInput{BankName: "GTBank", WhatsAppNumber: "+234 801 234 5678"}); err != nil {
		t.Fatalf("UpdatePaymentDetails returned error: %v", err)
	}
	link, err := svc.AsoebiOrderLink(ctx, Principal{AccessCode: "AAAAA"}, item.ID)
	if err != nil {
		t.Fatalf("AsoebiOrderLink returned error: %v", err)
	}
	if !strings.HasPrefix(link, "https://wa.me/2348012345678?text=") {
		t.Fatalf("unexpected link %s", link)
	}
	if _, err := svc.AsoebiOrderLink(ctx, Principal{}, "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestContentService_RegistryAndWeddingParty(t *testing.T) {
	repos := newStoreRepos()
	svc, _ := newContentServiceForTest(t, repos)
	ctx := context.Background()

	if _, err := svc.AddRegistryItem(ctx, adminPrincipal, RegistryInput{Item: "Blender", Price: 0, Link: "https://shop.example.com/blender"}); err != nil {
		t.Fatalf("AddRegistryItem returned error: %v", err)
	}
	if _, err := svc.AddRegistryItem(ctx, adminPrincipal, RegistryInput{Item: "Toaster", Price: -1}); err == nil {
		t.Fatal("expected negative price to be rejected")
	}

	for _, input := range []WeddingPartyInput{
		{Name: "Chi", Role: "Maid of honour", Side: "bride"},
		{Name: "Dayo", Role: "Best man", Side: "Groom"},
		{Name: "Efe", Role: "Bridesmaid", Side: "bride"},
	} {
		if _, err := svc.AddWeddingPartyMember(ctx, adminPrincipal, input); err != nil {
			t.Fatalf("AddWeddingPartyMember returned error: %v", err)
		}
	}
	if _, err := svc.AddWeddingPartyMember(ctx, adminPrincipal, WeddingPartyInput{Name: "Fola", Side: "both"}); err == nil {
		t.Fatal("expected unknown side to be rejected")
	}

	party, err := svc.ListWeddingParty(ctx, Principal{})
	if err != nil {
		t.Fatalf("ListWeddingParty returned error: %v", err)
	}
	if len(party.Bride) != 2 || party.Bride[0].Name != "Chi" || party.Bride[1].Name != "Efe" {
		t.Fatalf("unexpected bride side %+v", party.Bride)
	}
	if len(party.Groom) != 1 || party.Groom[0].Name != "Dayo" {
		t.Fatalf("unexpected groom side %+v", party.Groom)
	}

	id, err := svc.RemoveAt(ctx, adminPrincipal, CollectionWeddingParty, 1)
	if err != nil {
		t.Fatalf("RemoveAt returned error: %v", err)
	}
	party, _ = svc.ListWeddingParty(ctx, Principal{})
	if len(party.Groom) != 0 || len(party.Bride) != 2 {
		t.Fatalf("expected only Dayo (%s) removed, got %+v", id, party)
	}
}

func TestContentService_PaymentDetailsAndReload(t *testing.T) {
	repos := newStoreRepos()
	svc, store := newContentServiceForTest(t, repos)
	ctx := context.Background()

	if _, err := svc.GetPaymentDetails(ctx, Principal{}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound before details exist, got %v", err)
	}
	if _, err := svc.UpdatePaymentDetails(ctx, adminPrincipal, PaymentDetailsInput{AccountName: "Ada", WhatsAppNumber: "call me"}); err == nil {
		t.Fatal("expected a WhatsApp number without digits to be rejected")
	}
	if _, err := svc.UpdatePaymentDetails(ctx, adminPrincipal, PaymentDetailsInput{AccountName: "Ada", AccountNumber: "0123456789", BankName: "GTBank"}); err != nil {
		t.Fatalf("UpdatePaymentDetails returned error: %v", err)
	}
	details, err := svc.GetPaymentDetails(ctx, Principal{AccessCode: "AAAAA"})
	if err != nil || details.AccountNumber != "0123456789" {
		t.Fatalf("unexpected details %+v (%v)", details, err)
	}

	repos.gallery.createErr = errWriteFailed
	_, err = svc.AddGalleryItem(ctx, adminPrincipal, GalleryInput{ImageURL: "https://example.com/a.jpg"})
	var pErr *PersistenceError
	if !errors.As(err, &pErr) {
		t.Fatalf("expected PersistenceError, got %v", err)
	}
	if len(store.GalleryItems()) != 1 {
		t.Fatal("expected mirror to keep the unsaved item")
	}
	if err := svc.Reload(ctx, adminPrincipal); err != nil {
		t.Fatalf("Reload returned error: %v", err)
	}
	if len(store.GalleryItems()) != 0 {
		t.Fatal("expected reload to discard the unsaved item")
	}
}
