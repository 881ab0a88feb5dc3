// Package labels maps the simulator's semantic class ids onto the dataset's
// label set. The table is static configuration data; the remap itself is a
// pure element-wise lookup.
package labels

import (
	"github.com/pkg/errors"
)

// Table maps a simulator semantic class id to a dataset class id.
type Table map[uint32]uint16

// CarlaToKitti is the default remap between the simulator's semantic
// segmentation classes and the dataset's learning classes.
var CarlaToKitti = Table{
	1:  40,  // road - road
	2:  48,  // sidewalk - sidewalk
	3:  50,  // building - building
	4:  52,  // wall - other-structure
	5:  51,  // fence - fence
	6:  80,  // pole - pole
	7:  99,  // traffic light - other-object
	8:  81,  // traffic sign - traffic-sign
	9:  70,  // vegetation - vegetation
	10: 72,  // terrain - terrain
	11: 0,   // sky - unlabeled
	12: 30,  // pedestrian - person
	13: 31,  // rider - bicyclist
	14: 10,  // car - car
	15: 18,  // truck - truck
	16: 13,  // bus - bus
	17: 16,  // train - on-rails
	18: 15,  // motorcycle - motorcycle
	19: 11,  // bicycle - bicycle
	20: 20,  // static - outlier
	21: 259, // dynamic - moving-other-vehicle
	22: 99,  // other - other-object
	23: 49,  // water - other-ground
	24: 60,  // road line - lane-marking
	25: 49,  // ground - other-ground
	26: 52,  // bridge - other-structure
	27: 49,  // rail - other-ground
	28: 51,  // guard rail - fence
	29: 60,  // lane-marking
	30: 44,  // parking
}

// Remap translates semantic class ids element-wise, preserving input order.
// An id absent from the table aborts the whole remap; no sentinel class is
// ever substituted for an undefined one.
func (t Table) Remap(ids []uint32) ([]uint16, error) {
	out := make([]uint16, len(ids))
	for i, id := range ids {
		mapped, ok := t[id]
		if !ok {
			return nil, errors.Errorf("semantic class id %d has no mapping", id)
		}
		out[i] = mapped
	}
	return out, nil
}
