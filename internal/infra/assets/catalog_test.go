package assets

import "testing"

func TestCatalogResolvesAndOverrides(t *testing.T) {
	c := NewCatalog("assets", []string{"player", "rocks/boulder", "machines/workshop/BROKEN"}, map[string]string{
		"player":        "skins/astronaut.png",
		"rocks/boulder": "",
	})

	if ref, ok := c.Lookup("machines/workshop/BROKEN"); !ok || ref != "assets/machines/workshop/BROKEN.png" {
		t.Errorf("Expected the default path, got %q %v", ref, ok)
	}
	if ref, _ := c.Lookup("player"); ref != "skins/astronaut.png" {
		t.Errorf("Expected the override, got %q", ref)
	}
	if _, ok := c.Lookup("rocks/boulder"); ok {
		t.Errorf("Expected an empty override to remove the key")
	}
	if keys := c.Keys(); len(keys) != 2 || keys[0] != "machines/workshop/BROKEN" {
		t.Errorf("Expected 2 sorted keys, got %v", keys)
	}
}
