package changeset

// FieldDescriptor declares a top-level field the engine knows how to summarize
type FieldDescriptor struct {
	Key         string
	DisplayName string
	Kind        FieldKind
}

// Field keys with special handling
const (
	ItemsKey       = "items"
	ItemChangesKey = "itemChanges"
)

// TrackedFields is the ordered list of known purchase order fields.
// Summary lines for top-level fields follow this order.
var TrackedFields = []FieldDescriptor{
	{Key: "orderType", DisplayName: "Order Type", Kind: FieldStatus},
	{Key: "orderDate", DisplayName: "Order Date", Kind: FieldDate},
	{Key: "deliveryDate", DisplayName: "Delivery Date", Kind: FieldDate},
	{Key: "party", DisplayName: "Party", Kind: FieldReference},
	{Key: "contactPerson", DisplayName: "Contact Person", Kind: FieldText},
	{Key: "contactNumber", DisplayName: "Contact Number", Kind: FieldText},
	{Key: "poNumber", DisplayName: "PO Number", Kind: FieldText},
	{Key: "styleNo", DisplayName: "Style No", Kind: FieldText},
	{Key: "rate", DisplayName: "Rate", Kind: FieldNumber},
	{Key: "status", DisplayName: "Status", Kind: FieldStatus},
	{Key: ItemsKey, DisplayName: "Items", Kind: FieldItems},
}

// bookkeeping keys never reported by the generic pass
var ignoredKeys = map[string]struct{}{
	"id":           {},
	"_id":          {},
	"createdAt":    {},
	"updatedAt":    {},
	"__v":          {},
	ItemChangesKey: {},
}

var trackedKeys = func() map[string]struct{} {
	keys := make(map[string]struct{}, len(TrackedFields))
	for _, f := range TrackedFields {
		keys[f.Key] = struct{}{}
	}
	return keys
}()

func isGenericKey(key string) bool {
	if _, ok := trackedKeys[key]; ok {
		return false
	}
	_, ignored := ignoredKeys[key]
	return !ignored
}
