package seeder

import "github.com/google/uuid"

// demoNamespace derives stable ids so seeding twice updates rows instead of duplicating them.
var demoNamespace = uuid.MustParse("6f1e2c3a-8d4b-4c55-9a7e-2b1f0c9d8e71")

func demoID(name string) uuid.UUID {
	return uuid.NewSHA1(demoNamespace, []byte(name))
}

// DemoSeekerID is the seeker created by SeekersSeeder for the given handle.
func DemoSeekerID(handle string) uuid.UUID {
	return demoID("seeker:" + handle)
}

// DemoProviderUserID is the owning user of the demo provider with the given handle.
func DemoProviderUserID(handle string) uuid.UUID {
	return demoID("provider-user:" + handle)
}

func Defaults() []Seeder {
	return []Seeder{
		ProvidersSeeder{},
		SeekersSeeder{},
	}
}
