package partners

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/stocklane/stocklane/internal/shared"
)

type fakeRepo struct {
	partners map[int64]Partner
	nextID   int64
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{partners: make(map[int64]Partner), nextID: 1}
}

func (f *fakeRepo) Create(_ context.Context, kind Kind, input PartnerInput) (int64, error) {
	id := f.nextID
	f.nextID++
	f.partners[id] = Partner{ID: id, Kind: kind, Name: input.Name, Email: input.Email, Phone: input.Phone}
	return id, nil
}

func (f *fakeRepo) Get(_ context.Context, id int64) (Partner, error) {
	p, ok := f.partners[id]
	if !ok {
		return Partner{}, shared.ErrNotFound
	}
	return p, nil
}

func (f *fakeRepo) List(_ context.Context, kind Kind) ([]Partner, error) {
	out := make([]Partner, 0)
	for _, p := range f.partners {
		if p.Kind == kind {
			out = append(out, p)
		}
	}
	return out, nil
}

func TestCreateRequiresName(t *testing.T) {
	svc := NewService(newFakeRepo())

	_, err := svc.Create(context.Background(), KindSupplier, PartnerInput{})
	var verr *shared.ValidationError
	require.ErrorAs(t, err, &verr)
	require.Contains(t, verr.Fields, "name")
}

func TestCreateRejectsMalformedEmail(t *testing.T) {
	svc := NewService(newFakeRepo())

	email := "not-an-email"
	_, err := svc.Create(context.Background(), KindCustomer, PartnerInput{Name: "Acme", Email: &email})
	var verr *shared.ValidationError
	require.ErrorAs(t, err, &verr)
	require.Contains(t, verr.Fields, "email")
}

func TestListFiltersByKind(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo)

	_, err := svc.Create(context.Background(), KindSupplier, PartnerInput{Name: "Acme Supply"})
	require.NoError(t, err)
	_, err = svc.Create(context.Background(), KindCustomer, PartnerInput{Name: "Bob's Retail"})
	require.NoError(t, err)

	suppliers, err := svc.List(context.Background(), KindSupplier)
	require.NoError(t, err)
	require.Len(t, suppliers, 1)
	require.Equal(t, "Acme Supply", suppliers[0].Name)
}
