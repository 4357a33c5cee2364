// Package scene holds the objects that collision proxies are read from and
// inserted into. It owns object names, the active object, the selection and
// the block naming scheme used for new proxies.
package scene
