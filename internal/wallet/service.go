package wallet

import (
	"context"
	"fmt"
	"sort"
	"time"

	"log/slog"
)

// passProvisioner covers the wallet API calls the orchestration needs.
type passProvisioner interface {
	EnsureClass(ctx context.Context, classID string, template ClassTemplate) (EnsureResult, error)
	CreateObject(ctx context.Context, obj PassObject) error
}

// linkMinter mints save-to-wallet deep links.
type linkMinter interface {
	MintSaveLink(objectIDs []string) (string, error)
}

// GroupResult reports the outcome of a grouped pass creation.
type GroupResult struct {
	ObjectIDs []string
	SaveLink  string
}

// Service orchestrates class provisioning, object creation, and save-link
// minting for grouped passes.
type Service struct {
	provisioner passProvisioner
	builder     *Builder
	minter      linkMinter
	logger      *slog.Logger
}

// NewService creates a wallet Service.
func NewService(provisioner passProvisioner, builder *Builder, minter linkMinter, logger *slog.Logger) *Service {
	return &Service{
		provisioner: provisioner,
		builder:     builder,
		minter:      minter,
		logger:      logger,
	}
}

// CreateGroupedReceipts provisions the shared receipt class sized to the
// largest pass, creates one object per pass ordered by date descending, and
// mints a single save link covering them all.
//
// Object creation is sequential and aborts on the first failure; objects
// already created remain and the caller receives a single error.
func (s *Service) CreateGroupedReceipts(ctx context.Context, groupingID string, passes []ReceiptData) (GroupResult, error) {
	if len(passes) == 0 {
		return GroupResult{}, fmt.Errorf("no passes provided")
	}

	maxItems := 0
	for _, p := range passes {
		if len(p.Items) > maxItems {
			maxItems = len(p.Items)
		}
	}

	result, err := s.provisioner.EnsureClass(ctx, s.builder.ReceiptClassID(), ReceiptClassTemplate(maxItems))
	if err != nil {
		return GroupResult{}, err
	}
	if result == ClassCreated {
		s.logger.Info("receipt class created", "class_id", s.builder.ReceiptClassID())
	}

	ordered := sortByDateDescending(passes)

	objectIDs := make([]string, 0, len(ordered))
	for idx, pass := range ordered {
		sortIndex := pass.SortIndex
		if sortIndex == 0 {
			sortIndex = idx + 1
		}

		obj := s.builder.BuildReceiptObject(pass, groupingID, sortIndex)
		if err := s.provisioner.CreateObject(ctx, obj); err != nil {
			return GroupResult{}, fmt.Errorf("create receipt object %d of %d: %w", idx+1, len(ordered), err)
		}
		s.logger.Info("receipt object created", "object_id", obj.ID, "sort_index", sortIndex)
		objectIDs = append(objectIDs, obj.ID)
	}

	saveLink, err := s.minter.MintSaveLink(objectIDs)
	if err != nil {
		return GroupResult{}, err
	}

	return GroupResult{ObjectIDs: objectIDs, SaveLink: saveLink}, nil
}

// CreateShoppingLists provisions the shared shopping-list class and creates
// one object per list in input order, then mints a single save link.
func (s *Service) CreateShoppingLists(ctx context.Context, groupingID string, lists []ShoppingListData) (GroupResult, error) {
	if len(lists) == 0 {
		return GroupResult{}, fmt.Errorf("no lists provided")
	}

	maxItems := 0
	for _, l := range lists {
		if len(l.Items) > maxItems {
			maxItems = len(l.Items)
		}
	}

	result, err := s.provisioner.EnsureClass(ctx, s.builder.ShoppingListClassID(), ShoppingListClassTemplate(maxItems))
	if err != nil {
		return GroupResult{}, err
	}
	if result == ClassCreated {
		s.logger.Info("shopping list class created", "class_id", s.builder.ShoppingListClassID())
	}

	objectIDs := make([]string, 0, len(lists))
	for idx, list := range lists {
		sortIndex := list.SortIndex
		if sortIndex == 0 {
			sortIndex = idx + 1
		}

		obj := s.builder.BuildShoppingListObject(list, groupingID, sortIndex)
		if err := s.provisioner.CreateObject(ctx, obj); err != nil {
			return GroupResult{}, fmt.Errorf("create shopping list object %d of %d: %w", idx+1, len(lists), err)
		}
		s.logger.Info("shopping list object created", "object_id", obj.ID, "sort_index", sortIndex)
		objectIDs = append(objectIDs, obj.ID)
	}

	saveLink, err := s.minter.MintSaveLink(objectIDs)
	if err != nil {
		return GroupResult{}, err
	}

	return GroupResult{ObjectIDs: objectIDs, SaveLink: saveLink}, nil
}

// sortByDateDescending orders passes latest-first; passes with missing or
// unparseable dates sort last. The input slice is left untouched.
func sortByDateDescending(passes []ReceiptData) []ReceiptData {
	ordered := make([]ReceiptData, len(passes))
	copy(ordered, passes)

	sort.SliceStable(ordered, func(i, j int) bool {
		return parsePassDate(ordered[i].Date).After(parsePassDate(ordered[j].Date))
	})

	return ordered
}

func parsePassDate(value string) time.Time {
	parsed, err := time.Parse("2006-01-02", value)
	if err != nil {
		return time.Time{}
	}
	return parsed
}
